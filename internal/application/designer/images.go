package designer

import (
	"context"
	"fmt"
	"strings"

	"github.com/fulluproar/backoffice/internal/domain/designer"
	"github.com/fulluproar/backoffice/internal/domain/shared"
	"github.com/fulluproar/backoffice/internal/infrastructure/logger"
	"github.com/fulluproar/backoffice/internal/infrastructure/render"
	"go.uber.org/zap"
)

// ingestedImage is an image that has been decoded and stored
type ingestedImage struct {
	ref    designer.ImageRef
	width  int
	height int
}

// ingestImage resolves the input to bytes, checks that they decode to a
// supported raster within the pixel limit and stores them. Nothing here
// touches a session.
func (s *DesignerService) ingestImage(ctx context.Context, in ImageInput) (*ingestedImage, error) {
	data := in.Data
	origin := designer.ImageOriginUpload
	prefix := AssetPrefixUploads
	rawURL := strings.TrimSpace(in.URL)

	switch {
	case len(data) > 0:
	case rawURL != "":
		if s.remote == nil {
			return nil, shared.ErrInvalidInput.WithMessage("remote images are not enabled")
		}
		fetched, err := s.remote.Fetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		data = fetched
		origin = designer.ImageOriginRemote
		prefix = AssetPrefixRemote
	default:
		return nil, shared.ErrInvalidInput.WithMessage("an image file or url is required")
	}

	// a valid header can front corrupt pixel data
	_, info, err := render.DecodeImage(data, s.config.MaxImagePixels)
	if err != nil {
		logger.WithLogger(ctx, s.logger).Warn("image rejected",
			zap.String("file_name", in.FileName),
			zap.String("url", rawURL),
			zap.Error(err))
		return nil, err
	}

	if s.assets == nil {
		return nil, shared.ErrInvalidState.WithMessage("asset store is not configured")
	}
	key := s.assetKey(prefix, data)
	if err := s.assets.Put(ctx, key, data, info.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	ref := designer.ImageRef{
		AssetKey:    key,
		ContentType: info.ContentType,
		Origin:      origin,
	}
	if origin == designer.ImageOriginRemote {
		ref.URL = rawURL
	}
	return &ingestedImage{ref: ref, width: info.Width, height: info.Height}, nil
}
