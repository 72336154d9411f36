package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/fulluproar/backoffice/internal/domain/designer"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxImagePixels bounds width*height of decoded images
const DefaultMaxImagePixels = 40_000_000

var decodableTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
	"image/tiff": true,
}

// ImageInfo describes sniffed and decoded image bytes
type ImageInfo struct {
	ContentType string
	Width       int
	Height      int
}

// ProbeImage sniffs data and reads the image header without decoding the
// pixels. Anything that is not a supported raster, or whose pixel count
// exceeds maxPixels, fails with designer.ErrImageDecode.
func ProbeImage(data []byte, maxPixels int) (ImageInfo, error) {
	if len(data) == 0 {
		return ImageInfo{}, designer.ErrImageDecode.WithMessage("image is empty")
	}
	kind, err := filetype.Match(data)
	if err != nil || !decodableTypes[kind.MIME.Value] {
		return ImageInfo{}, designer.ErrImageDecode.WithMessage("unsupported image type")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, designer.ErrImageDecode.WithMessage("image header is unreadable")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ImageInfo{}, designer.ErrImageDecode.WithMessage("image has no pixels")
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxImagePixels
	}
	if cfg.Width*cfg.Height > maxPixels {
		return ImageInfo{}, designer.ErrImageDecode.WithMessage(
			fmt.Sprintf("image is %dx%d, larger than %d pixels", cfg.Width, cfg.Height, maxPixels))
	}
	return ImageInfo{ContentType: kind.MIME.Value, Width: cfg.Width, Height: cfg.Height}, nil
}

// DecodeImage probes and fully decodes data
func DecodeImage(data []byte, maxPixels int) (image.Image, ImageInfo, error) {
	info, err := ProbeImage(data, maxPixels)
	if err != nil {
		return nil, ImageInfo{}, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ImageInfo{}, designer.ErrImageDecode.WithMessage("image data is corrupt")
	}
	return img, info, nil
}
