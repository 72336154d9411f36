package designer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fulluproar/backoffice/internal/domain/designer"
	"github.com/fulluproar/backoffice/internal/domain/shared"
	"github.com/fulluproar/backoffice/internal/infrastructure/render"
	"github.com/fulluproar/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ExportRaster renders the session to a PNG at multiplier (the configured
// default when zero): background first, then elements in paint order,
// guides excluded. The PNG is stored and a CardExported event is published.
// Remote images from untrusted hosts block the export and leave the session
// untouched.
func (s *DesignerService) ExportRaster(ctx context.Context, id uuid.UUID, multiplier float64) (*ExportResult, error) {
	if multiplier <= 0 {
		multiplier = s.config.ExportMultiplier
	}
	format := designer.ExportFormatPNG
	ctx, span := s.sessionSpan(ctx, "designer.export_raster", id,
		telemetry.WithAttribute(telemetry.SpanAttrExportFormat, string(format)),
		telemetry.WithAttribute(telemetry.SpanAttrMultiplier, multiplier))
	defer span.End()
	start := time.Now()

	var raster *render.Raster
	err := s.sessions.With(id, func(sess *Session) error {
		r, err := s.renderExport(ctx, sess, multiplier)
		if err != nil {
			return err
		}
		raster = r
		return nil
	})
	if err != nil {
		return nil, s.exportFailed(ctx, span, format, start, err)
	}

	result := &ExportResult{
		Format:      format,
		ContentType: format.ContentType(),
		Data:        raster.PNG,
		Width:       raster.Width,
		Height:      raster.Height,
		Multiplier:  raster.Multiplier,
	}
	if err := s.storeExport(ctx, id, result); err != nil {
		return nil, s.exportFailed(ctx, span, format, start, err)
	}

	s.exportSucceeded(ctx, span, result, start)
	return result, nil
}

// ExportPDF renders the raster at multiplier and wraps it in a single page
// sized to the card
func (s *DesignerService) ExportPDF(ctx context.Context, id uuid.UUID, multiplier float64) (*ExportResult, error) {
	if s.pdf == nil {
		return nil, ErrPDFDisabled
	}
	if multiplier <= 0 {
		multiplier = s.config.ExportMultiplier
	}
	format := designer.ExportFormatPDF
	ctx, span := s.sessionSpan(ctx, "designer.export_pdf", id,
		telemetry.WithAttribute(telemetry.SpanAttrExportFormat, string(format)),
		telemetry.WithAttribute(telemetry.SpanAttrMultiplier, multiplier))
	defer span.End()
	start := time.Now()

	var (
		raster *render.Raster
		dim    designer.Dimension
	)
	err := s.sessions.With(id, func(sess *Session) error {
		r, err := s.renderExport(ctx, sess, multiplier)
		if err != nil {
			return err
		}
		raster = r
		dim = sess.doc.Dimension()
		return nil
	})
	if err != nil {
		return nil, s.exportFailed(ctx, span, format, start, err)
	}

	doc, err := s.pdf.Render(ctx, render.PDFRequest{
		Dimension: dim,
		PNG:       raster.PNG,
		Title:     "Card " + id.String(),
	})
	if err != nil {
		return nil, s.exportFailed(ctx, span, format, start, err)
	}

	result := &ExportResult{
		Format:      format,
		ContentType: format.ContentType(),
		Data:        doc.Data,
		Width:       raster.Width,
		Height:      raster.Height,
		Multiplier:  raster.Multiplier,
	}
	if err := s.storeExport(ctx, id, result); err != nil {
		return nil, s.exportFailed(ctx, span, format, start, err)
	}

	s.exportSucceeded(ctx, span, result, start)
	return result, nil
}

// ExportScene dumps the session content as a lossless scene, JSON unless
// SCENE_YAML is asked for. Scene dumps are not stored.
func (s *DesignerService) ExportScene(ctx context.Context, id uuid.UUID, format designer.ExportFormat) (*ExportResult, error) {
	if format != designer.ExportFormatSceneYAML {
		format = designer.ExportFormatSceneJSON
	}
	ctx, span := s.sessionSpan(ctx, "designer.export_scene", id,
		telemetry.WithAttribute(telemetry.SpanAttrExportFormat, string(format)))
	defer span.End()
	start := time.Now()

	var snapshot designer.SceneSnapshot
	err := s.sessions.With(id, func(sess *Session) error {
		snapshot = sess.doc.Snapshot()
		return nil
	})
	if err != nil {
		return nil, s.exportFailed(ctx, span, format, start, err)
	}

	data, err := render.DumpScene(snapshot, format)
	if err != nil {
		return nil, s.exportFailed(ctx, span, format, start, err)
	}

	result := &ExportResult{
		Format:      format,
		ContentType: format.ContentType(),
		Data:        data,
	}
	s.metrics.ExportFinished(ctx, string(format), time.Since(start), len(data), telemetry.OutcomeSuccess)
	telemetry.SetOK(span)
	return result, nil
}

// Preview renders the session at reference size with the centerline guides.
// Nothing is stored and the document state is unchanged.
func (s *DesignerService) Preview(ctx context.Context, id uuid.UUID) (*ExportResult, error) {
	ctx, span := s.sessionSpan(ctx, "designer.preview", id)
	defer span.End()

	var raster *render.Raster
	err := s.sessions.With(id, func(sess *Session) error {
		r, err := s.raster.Render(ctx, render.RasterRequest{
			Snapshot:   sess.doc.Snapshot(),
			Guides:     sess.doc.Guides(),
			Multiplier: 1,
		})
		if err != nil {
			return err
		}
		raster = r
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetOK(span)
	return &ExportResult{
		Format:      designer.ExportFormatPNG,
		ContentType: designer.ExportFormatPNG.ContentType(),
		Data:        raster.PNG,
		Width:       raster.Width,
		Height:      raster.Height,
		Multiplier:  raster.Multiplier,
	}, nil
}

// renderExport checks image trust and renders without guides. The caller
// holds the session lock; the document is marked exported on success.
func (s *DesignerService) renderExport(ctx context.Context, sess *Session, multiplier float64) (*render.Raster, error) {
	snapshot := sess.doc.Snapshot()
	if err := s.trust.CheckSnapshot(snapshot); err != nil {
		return nil, err
	}
	raster, err := s.raster.Render(ctx, render.RasterRequest{
		Snapshot:   snapshot,
		Multiplier: multiplier,
	})
	if err != nil {
		return nil, err
	}
	sess.doc.MarkExported()
	return raster, nil
}

// storeExport persists the artifact and publishes CardExported
func (s *DesignerService) storeExport(ctx context.Context, id uuid.UUID, result *ExportResult) error {
	if s.assets != nil {
		key := s.assetKey(AssetPrefixExports, result.Data)
		if err := s.assets.Put(ctx, key, result.Data, result.ContentType); err != nil {
			return fmt.Errorf("failed to store export: %w", err)
		}
		result.AssetKey = key

		if gen, ok := s.assets.(DownloadURLGenerator); ok {
			url, _, err := gen.GenerateDownloadURL(ctx, key, s.config.DownloadURLExpiry)
			if err != nil {
				s.logger.Warn("failed to generate export download url",
					zap.String("asset_key", key), zap.Error(err))
			} else {
				result.DownloadURL = url
			}
		}
	}

	event := designer.NewCardExportedEvent(id, result.Format, result.AssetKey, len(result.Data))
	event.Width = result.Width
	event.Height = result.Height
	event.Multiplier = result.Multiplier
	s.publish(ctx, event)
	return nil
}

func (s *DesignerService) exportSucceeded(ctx context.Context, span trace.Span, result *ExportResult, start time.Time) {
	s.metrics.ExportFinished(ctx, string(result.Format), time.Since(start), len(result.Data), telemetry.OutcomeSuccess)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrWidthPx, result.Width,
		telemetry.SpanAttrHeightPx, result.Height,
		telemetry.SpanAttrAssetKey, result.AssetKey)
	telemetry.SetOK(span)
	s.logger.Info("card exported",
		zap.String("format", string(result.Format)),
		zap.Int("width", result.Width),
		zap.Int("height", result.Height),
		zap.Int("size", len(result.Data)),
		zap.Duration("elapsed", time.Since(start)))
}

func (s *DesignerService) exportFailed(ctx context.Context, span trace.Span, format designer.ExportFormat, start time.Time, err error) error {
	outcome := telemetry.OutcomeFailure
	if errors.Is(err, designer.ErrExportBlocked) {
		outcome = telemetry.OutcomeBlocked
	}
	s.metrics.ExportFinished(ctx, string(format), time.Since(start), 0, outcome)
	telemetry.RecordError(span, err)

	var de *shared.DomainError
	var re *render.RenderError
	if errors.As(err, &de) || errors.As(err, &re) {
		return err
	}
	return fmt.Errorf("failed to export %s: %w", format, err)
}
