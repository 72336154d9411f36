package event

import (
	"context"

	"github.com/fulluproar/backoffice/internal/domain/designer"
	"github.com/fulluproar/backoffice/internal/domain/shared"
	"github.com/fulluproar/backoffice/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ActivityLogHandler writes one structured log line per saved template and
// per export, so downstream systems tailing the log see the save callback.
type ActivityLogHandler struct {
	logger *zap.Logger
}

// NewActivityLogHandler creates an ActivityLogHandler
func NewActivityLogHandler(l *zap.Logger) *ActivityLogHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &ActivityLogHandler{logger: l.Named("activity")}
}

// EventTypes returns the designer events this handler records
func (h *ActivityLogHandler) EventTypes() []string {
	return []string{designer.EventTypeTemplateSaved, designer.EventTypeCardExported}
}

// Handle logs the event with its payload fields
func (h *ActivityLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	l := logger.WithLogger(ctx, h.logger).With(
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)

	switch e := event.(type) {
	case *designer.TemplateSavedEvent:
		l.Info("card template saved",
			zap.String("template_id", e.TemplateID.String()),
			zap.String("name", e.Name),
			zap.String("dimension", string(e.Dimension)),
			zap.Int("element_count", e.ElementCount),
		)
	case *designer.CardExportedEvent:
		fields := []zap.Field{
			zap.String("session_id", e.SessionID.String()),
			zap.String("format", string(e.Format)),
			zap.String("asset_key", e.AssetKey),
			zap.Int("size", e.Size),
		}
		if e.Width > 0 {
			fields = append(fields, zap.Int("width", e.Width), zap.Int("height", e.Height))
		}
		l.Info("card exported", fields...)
	default:
		l.Debug("unhandled event", zap.String("aggregate_type", event.AggregateType()))
	}
	return nil
}

var _ shared.EventHandler = (*ActivityLogHandler)(nil)
