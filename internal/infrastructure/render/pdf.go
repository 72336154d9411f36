package render

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/fulluproar/backoffice/internal/domain/designer"
	"go.uber.org/zap"
)

const defaultChromeTimeout = 30 * time.Second

// PDFConfig contains configuration for the chromedp PDF renderer
type PDFConfig struct {
	// Timeout bounds a single render
	Timeout time.Duration
	// RemoteURL is the DevTools websocket URL of a running Chrome. When empty
	// a local headless browser is launched.
	RemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	Logger    *zap.Logger
}

// PDFRequest describes one PDF export
type PDFRequest struct {
	Dimension designer.Dimension
	PNG       []byte
	Title     string
}

// PDF is a rendered single-page document
type PDF struct {
	Data      []byte
	PageCount int
	Duration  time.Duration
}

// PDFRenderer wraps a raster in a single page sized to the card
type PDFRenderer struct {
	config      PDFConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewPDFRenderer creates a chromedp-backed PDF renderer. The browser is
// started lazily by the first render.
func NewPDFRenderer(cfg PDFConfig) *PDFRenderer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultChromeTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &PDFRenderer{config: cfg, logger: logger}
	if cfg.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-first-run", true),
			chromedp.Flag("disable-extensions", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-background-networking", true),
			chromedp.Flag("disable-sync", true),
		)
		if cfg.NoSandbox {
			opts = append(opts, chromedp.Flag("no-sandbox", true))
		}
		r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}
	return r
}

// Render prints req.PNG onto one page of exactly the card's size in inches
func (r *PDFRenderer) Render(ctx context.Context, req PDFRequest) (*PDF, error) {
	if len(req.PNG) == 0 {
		return nil, NewRenderError(ErrCodeInvalidScene, "raster is empty", nil)
	}
	if !req.Dimension.IsValid() {
		return nil, NewRenderError(ErrCodeInvalidScene, "dimension must be positive", nil)
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	widthIn, heightIn := pageInches(req.Dimension)
	html := pageHTML(req, widthIn, heightIn)

	var data []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("img#card", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			out, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(widthIn).
				WithPaperHeight(heightIn).
				WithMarginTop(0).
				WithMarginRight(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			data = out
			return nil
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, timeoutError(ctx.Err())
		}
		if errors.Is(err, context.Canceled) {
			return nil, timeoutError(err)
		}
		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	}
	if len(data) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	pdf := &PDF{
		Data:      data,
		PageCount: countPages(data),
		Duration:  time.Since(start),
	}
	r.logger.Info("PDF rendered",
		zap.Int("bytes", len(data)),
		zap.Int("pages", pdf.PageCount),
		zap.Duration("duration", pdf.Duration))
	return pdf, nil
}

// Close shuts the browser allocator down
func (r *PDFRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

// pageInches converts reference units to inches
func pageInches(dim designer.Dimension) (width, height float64) {
	return dim.Width / designer.ReferenceDPI, dim.Height / designer.ReferenceDPI
}

func pageHTML(req PDFRequest, widthIn, heightIn float64) string {
	title := req.Title
	if title == "" {
		title = "Card"
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"UTF-8\"><title>")
	b.WriteString(escapeHTML(title))
	b.WriteString("</title><style>")
	fmt.Fprintf(&b, "@page{size:%.4fin %.4fin;margin:0}", widthIn, heightIn)
	fmt.Fprintf(&b, "html,body{margin:0;padding:0;width:%.4fin;height:%.4fin;overflow:hidden}", widthIn, heightIn)
	b.WriteString("img{display:block;width:100%;height:100%}")
	b.WriteString("</style></head><body><img id=\"card\" src=\"data:image/png;base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(req.PNG))
	b.WriteString("\"></body></html>")
	return b.String()
}

func escapeHTML(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;").Replace(s)
}

// countPages counts page objects, excluding the page tree nodes
func countPages(pdf []byte) int {
	s := string(pdf)
	n := strings.Count(s, "/Type /Page") - strings.Count(s, "/Type /Pages")
	return max(n, 1)
}
