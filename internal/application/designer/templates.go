package designer

import (
	"context"
	"fmt"
	"strings"

	"github.com/fulluproar/backoffice/internal/domain/designer"
	"github.com/fulluproar/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaveTemplate appends the session content to the template store as a new
// template. Names are not unique; saving twice yields two templates.
func (s *DesignerService) SaveTemplate(ctx context.Context, id uuid.UUID, req SaveTemplateRequest) (*TemplateSummary, error) {
	ctx, span := s.sessionSpan(ctx, "designer.save_template", id)
	defer span.End()

	var template *designer.Template
	err := s.sessions.With(id, func(sess *Session) error {
		t, err := designer.NewTemplate(req.Name, sess.doc.Snapshot())
		if err != nil {
			return err
		}
		if err := s.templates.Append(ctx, t); err != nil {
			return fmt.Errorf("failed to save template: %w", err)
		}
		sess.doc.MarkSaved()
		template = t
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, template.GetDomainEvents()...)
	template.ClearDomainEvents()
	s.metrics.TemplateSaved(ctx, string(template.Snapshot.Dimension.Name))

	s.logger.Info("card template saved",
		zap.String("session_id", id.String()),
		zap.String("template_id", template.ID.String()),
		zap.String("name", template.Name))
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTemplateID, template.ID.String(),
		telemetry.SpanAttrElementCount, template.ElementCount())
	telemetry.SetOK(span)

	summary := toTemplateSummary(template)
	return &summary, nil
}

// LoadTemplate replaces the session content with a saved template. The
// document is reinitialized to the template's dimension, and only once that
// has completed are the background and elements restored.
func (s *DesignerService) LoadTemplate(ctx context.Context, id, templateID uuid.UUID) (*SessionResponse, error) {
	ctx, span := s.sessionSpan(ctx, "designer.load_template", id,
		telemetry.WithAttribute(telemetry.SpanAttrTemplateID, templateID.String()))
	defer span.End()

	template, err := s.findTemplate(ctx, templateID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var resp SessionResponse
	err = s.sessions.With(id, func(sess *Session) error {
		done, err := sess.doc.Init(template.Snapshot.Dimension)
		if err != nil {
			return err
		}
		<-done
		if err := sess.doc.Restore(template.Snapshot); err != nil {
			return err
		}
		sess.selection.Deselect()
		resp = toSessionResponse(sess)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.fonts != nil {
		for _, e := range template.Snapshot.Elements {
			if e.Text != nil {
				s.fonts.EnsureLoaded(e.Text.FontFamily)
			}
		}
	}

	s.logger.Info("card template loaded",
		zap.String("session_id", id.String()),
		zap.String("template_id", templateID.String()))
	telemetry.SetOK(span)
	return &resp, nil
}

// ListTemplates returns saved templates oldest first, narrowed to one
// dimension preset when the filter names one. The count is the number of
// matches before paging.
func (s *DesignerService) ListTemplates(ctx context.Context, filter TemplateListFilter) ([]TemplateSummary, int64, error) {
	templates, err := s.templates.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list templates: %w", err)
	}

	out := make([]TemplateSummary, 0, len(templates))
	for i := range templates {
		summary := toTemplateSummary(&templates[i])
		if filter.Dimension != "" && !strings.EqualFold(summary.Dimension, filter.Dimension) {
			continue
		}
		out = append(out, summary)
	}

	total := int64(len(out))
	start, end := filter.bounds(len(out))
	return out[start:end], total, nil
}

// GetTemplate returns a template with its snapshot
func (s *DesignerService) GetTemplate(ctx context.Context, templateID uuid.UUID) (*TemplateResponse, error) {
	template, err := s.findTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	resp := toTemplateResponse(template)
	return &resp, nil
}

func (s *DesignerService) findTemplate(ctx context.Context, templateID uuid.UUID) (*designer.Template, error) {
	template, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return template, nil
}
