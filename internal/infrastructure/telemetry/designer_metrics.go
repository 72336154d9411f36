package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when metrics are constructed without a meter.
var ErrMeterNil = errors.New("telemetry: meter is nil")

// Outcome attribute values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeBlocked = "blocked"
	OutcomeCached  = "cached"
)

// DesignerMetrics holds the card designer instruments.
type DesignerMetrics struct {
	sessionsActive *UpDownCounter
	elementsAdded  *Counter
	styleChanges   *Counter
	templatesSaved *Counter
	exportsTotal   *Counter
	exportDuration *Histogram
	exportBytes    *Histogram
	fontLoads      *Counter
	fontLoadTime   *Histogram
}

// NewDesignerMetrics registers the designer instruments on meter.
func NewDesignerMetrics(meter metric.Meter) (*DesignerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	dm := &DesignerMetrics{}
	var err error

	if dm.sessionsActive, err = NewUpDownCounter(meter,
		"designer_sessions_active", "Open canvas sessions", "{sessions}"); err != nil {
		return nil, err
	}
	if dm.elementsAdded, err = NewCounter(meter,
		"designer_elements_added_total", "Elements added to canvases", "{elements}"); err != nil {
		return nil, err
	}
	if dm.styleChanges, err = NewCounter(meter,
		"designer_style_changes_total", "Style property changes by outcome", "{changes}"); err != nil {
		return nil, err
	}
	if dm.templatesSaved, err = NewCounter(meter,
		"designer_templates_saved_total", "Templates appended to the repository", "{templates}"); err != nil {
		return nil, err
	}
	if dm.exportsTotal, err = NewCounter(meter,
		"designer_exports_total", "Card exports by format and outcome", "{exports}"); err != nil {
		return nil, err
	}
	if dm.exportDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "designer_export_duration_seconds",
		Description: "Time to render and encode an export",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if dm.exportBytes, err = NewHistogram(meter, HistogramOpts{
		Name:        "designer_export_size_bytes",
		Description: "Encoded export size",
		Unit:        "By",
		Boundaries:  ExportSizeBuckets,
	}); err != nil {
		return nil, err
	}
	if dm.fontLoads, err = NewCounter(meter,
		"designer_font_loads_total", "Font family loads by source and outcome", "{loads}"); err != nil {
		return nil, err
	}
	if dm.fontLoadTime, err = NewHistogram(meter, HistogramOpts{
		Name:        "designer_font_load_duration_seconds",
		Description: "Time to resolve a font family",
		Unit:        "s",
		Boundaries:  FontFetchBuckets,
	}); err != nil {
		return nil, err
	}

	return dm, nil
}

// SessionOpened increments the active session gauge.
func (m *DesignerMetrics) SessionOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.sessionsActive.Add(ctx, 1)
}

// SessionsClosed decrements the active session gauge by n.
func (m *DesignerMetrics) SessionsClosed(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sessionsActive.Add(ctx, -int64(n))
}

func (m *DesignerMetrics) ElementAdded(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.elementsAdded.Inc(ctx, AttrElementKind.String(kind))
}

func (m *DesignerMetrics) StyleChanged(ctx context.Context, property string, err error) {
	if m == nil {
		return
	}
	m.styleChanges.Inc(ctx, AttrProperty.String(property), AttrOutcome.String(outcomeOf(err)))
}

func (m *DesignerMetrics) TemplateSaved(ctx context.Context, dimension string) {
	if m == nil {
		return
	}
	m.templatesSaved.Inc(ctx, AttrDimension.String(dimension))
}

// ExportFinished records one export attempt. size is ignored on failure.
func (m *DesignerMetrics) ExportFinished(ctx context.Context, format string, elapsed time.Duration, size int, outcome string) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrExportFormat.String(format), AttrOutcome.String(outcome)}
	m.exportsTotal.Inc(ctx, attrs...)
	m.exportDuration.RecordDuration(ctx, elapsed, attrs...)
	if outcome == OutcomeSuccess {
		m.exportBytes.Record(ctx, float64(size), AttrExportFormat.String(format))
	}
}

func (m *DesignerMetrics) FontLoaded(ctx context.Context, source string, elapsed time.Duration, outcome string) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrFontSource.String(source), AttrOutcome.String(outcome)}
	m.fontLoads.Inc(ctx, attrs...)
	m.fontLoadTime.RecordDuration(ctx, elapsed, attrs...)
}

func outcomeOf(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
