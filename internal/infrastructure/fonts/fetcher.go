package fonts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/image/font/opentype"
	"golang.org/x/sync/singleflight"

	"github.com/fulluproar/backoffice/internal/domain/designer"
)

const (
	maxStylesheetSize = 256 << 10
	maxFontFileSize   = 16 << 20
	// variantAxes asks the css2 API for regular, bold, italic and bold italic
	variantAxes = ":ital,wght@0,400;0,700;1,400;1,700"
)

var (
	// ErrFamilyNotFound is returned when the endpoint does not know the family
	ErrFamilyNotFound = errors.New("fonts: family not found at font source")
	// ErrNoFontFaces is returned when the stylesheet has no usable @font-face rule
	ErrNoFontFaces = errors.New("fonts: stylesheet has no usable @font-face rules")

	cssURLPattern = regexp.MustCompile(`url\(\s*['"]?([^'")]+)['"]?\s*\)`)
)

// FontFace is one @font-face rule of a stylesheet
type FontFace struct {
	Family  string
	Variant Variant
	URL     string
}

// Fetcher downloads font families from a css2-style stylesheet endpoint
type Fetcher struct {
	client    *http.Client
	sourceURL string
	userAgent string
	group     singleflight.Group
}

// NewFetcher creates a Fetcher. userAgent selects the font format the
// endpoint serves; an old desktop Safari agent yields TrueType files.
func NewFetcher(sourceURL, userAgent string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		sourceURL: sourceURL,
		userAgent: userAgent,
	}
}

// Fetch resolves family to its font files, keyed by variant. Families that
// lack one of the four standard variants are retried with a plain query.
func (f *Fetcher) Fetch(ctx context.Context, family string) (map[Variant][]byte, error) {
	sheet, err := f.stylesheet(ctx, family+variantAxes)
	if errors.Is(err, ErrFamilyNotFound) {
		sheet, err = f.stylesheet(ctx, family)
	}
	if err != nil {
		return nil, err
	}

	faces, err := ParseFontFaces(sheet)
	if err != nil {
		return nil, err
	}
	if len(faces) == 0 {
		return nil, ErrNoFontFaces
	}

	variants := make(map[Variant][]byte, len(faces))
	for _, face := range faces {
		if _, ok := variants[face.Variant]; ok {
			continue
		}
		data, err := f.download(ctx, face.URL)
		if err != nil {
			return nil, err
		}
		variants[face.Variant] = data
	}
	return variants, nil
}

func (f *Fetcher) stylesheet(ctx context.Context, familyQuery string) (string, error) {
	u, err := url.Parse(f.sourceURL)
	if err != nil {
		return "", fmt.Errorf("fonts: invalid source url: %w", err)
	}
	q := u.Query()
	q.Set("family", familyQuery)
	u.RawQuery = q.Encode()

	body, status, err := f.get(ctx, u.String(), maxStylesheetSize)
	if err != nil {
		return "", err
	}
	switch {
	case status == http.StatusBadRequest || status == http.StatusNotFound:
		return "", ErrFamilyNotFound
	case status >= 400:
		return "", fmt.Errorf("fonts: stylesheet request failed: HTTP %d", status)
	}
	return string(body), nil
}

// download fetches one font file. Concurrent requests for the same URL share
// a single transfer.
func (f *Fetcher) download(ctx context.Context, fontURL string) ([]byte, error) {
	v, err, _ := f.group.Do(fontURL, func() (any, error) {
		body, status, err := f.get(ctx, fontURL, maxFontFileSize)
		if err != nil {
			return nil, err
		}
		if status >= 400 {
			return nil, fmt.Errorf("fonts: font file request failed: HTTP %d", status)
		}
		if _, err := opentype.Parse(body); err != nil {
			return nil, fmt.Errorf("fonts: downloaded file is not a font: %w", err)
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (f *Fetcher) get(ctx context.Context, target string, limit int64) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("fonts: failed to create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fonts: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, 0, fmt.Errorf("fonts: failed to read response: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, 0, fmt.Errorf("fonts: response exceeds %d bytes", limit)
	}
	return body, resp.StatusCode, nil
}

// ParseFontFaces extracts the @font-face rules of a stylesheet. Rules
// without a url() source are skipped; weights of 600 and above are bold.
func ParseFontFaces(stylesheet string) ([]FontFace, error) {
	sheet, err := parser.Parse(stylesheet)
	if err != nil {
		return nil, fmt.Errorf("fonts: failed to parse stylesheet: %w", err)
	}

	var faces []FontFace
	for _, rule := range sheet.Rules {
		if rule.Kind != css.AtRule || !strings.EqualFold(strings.TrimPrefix(rule.Name, "@"), "font-face") {
			continue
		}
		face := FontFace{Variant: Regular}
		for _, decl := range rule.Declarations {
			value := strings.TrimSpace(decl.Value)
			switch strings.ToLower(decl.Property) {
			case "font-family":
				face.Family = strings.Trim(value, `'"`)
			case "font-style":
				if v := strings.ToLower(value); v == "italic" || v == "oblique" {
					face.Variant.Style = designer.FontStyleItalic
				}
			case "font-weight":
				if isBoldWeight(value) {
					face.Variant.Weight = designer.FontWeightBold
				}
			case "src":
				if m := cssURLPattern.FindStringSubmatch(value); m != nil {
					face.URL = m[1]
				}
			}
		}
		if face.URL != "" {
			faces = append(faces, face)
		}
	}
	return faces, nil
}

func isBoldWeight(value string) bool {
	switch strings.ToLower(value) {
	case "bold", "bolder":
		return true
	}
	n, err := strconv.Atoi(value)
	return err == nil && n >= 600
}
