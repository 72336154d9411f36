package designer

import (
	"context"
	"time"

	"github.com/fulluproar/backoffice/internal/infrastructure/fonts"
	"github.com/fulluproar/backoffice/internal/infrastructure/render"
)

// Asset key prefixes
const (
	AssetPrefixUploads = "uploads"
	AssetPrefixRemote  = "remote"
	AssetPrefixExports = "exports"
)

// AssetStore holds raster bytes referenced by ImageRef.AssetKey and the
// artifacts produced by exports.
// Implemented by the infrastructure layer (S3, filesystem, memory).
type AssetStore interface {
	// Put stores data under key. Writing the same key twice is allowed.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get returns the bytes and content type stored under key.
	// A missing key yields an error matching shared.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, string, error)

	// Exists checks if key is present
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// DownloadURLGenerator is implemented by asset stores that can hand out
// time-limited direct download links
type DownloadURLGenerator interface {
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// RemoteImageFetcher downloads images referenced by URL
type RemoteImageFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// FontRegistry resolves font families for text elements
type FontRegistry interface {
	// EnsureLoaded starts loading family if needed; the channel closes when
	// the attempt finishes
	EnsureLoaded(family string) <-chan struct{}
	IsReady(family string) bool
	Families() []fonts.FamilyInfo
}

// RasterRenderer paints snapshots to PNG
type RasterRenderer interface {
	Render(ctx context.Context, req render.RasterRequest) (*render.Raster, error)
}

// PDFRenderer wraps a raster in a single-page PDF
type PDFRenderer interface {
	Render(ctx context.Context, req render.PDFRequest) (*render.PDF, error)
}
