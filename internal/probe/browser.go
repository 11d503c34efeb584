package probe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserConfig carries the per-instance browser settings.
type BrowserConfig struct {
	Headless   bool
	NavTimeout time.Duration
	UserAgent  string
	Indicators []string // defaults to DefaultIndicators
}

// Browser is the chromedp-backed ProbeExecutor. One instance drives one
// headless Chrome tab for one probe; instances are not safe for concurrent
// use and must not be shared between workers.
type Browser struct {
	cfg BrowserConfig

	mu          sync.Mutex
	browserCtx  context.Context
	cancelChain []context.CancelFunc
}

func NewBrowser(cfg BrowserConfig) *Browser {
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = 10 * time.Second
	}
	if len(cfg.Indicators) == 0 {
		cfg.Indicators = DefaultIndicators
	}
	return &Browser{cfg: cfg}
}

var errNotOpen = errors.New("browser not open")

func (b *Browser) Open(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx != nil {
		b.closeLocked()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.WindowSize(1920, 1080),
	)
	if b.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.cfg.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	b.cancelChain = []context.CancelFunc{browserCancel, allocCancel}

	// Run with no actions launches the browser, so failures surface here
	// instead of on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		b.closeLocked()
		return fmt.Errorf("launch browser: %w", err)
	}
	b.browserCtx = browserCtx
	return nil
}

func (b *Browser) Navigate(ctx context.Context, url string) error {
	bctx, err := b.ctx()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tctx, cancel := context.WithTimeout(bctx, b.cfg.NavTimeout)
	defer cancel()

	err = chromedp.Run(tctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (b *Browser) DetectSuccess(ctx context.Context) (bool, error) {
	content, err := b.pageText(ctx)
	if err != nil {
		return false, err
	}
	return Success(content, b.cfg.Indicators), nil
}

func (b *Browser) ExtractPayload(ctx context.Context) (string, error) {
	content, err := b.pageText(ctx)
	if err != nil {
		return "", err
	}
	return ExtractCode(content), nil
}

func (b *Browser) CaptureArtifact(ctx context.Context, path string) error {
	bctx, err := b.ctx()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf []byte
	if err := chromedp.Run(bctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

// Close tears down the browser. Safe to call repeatedly and on a never-opened
// instance.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeLocked()
}

func (b *Browser) closeLocked() {
	for _, cancel := range b.cancelChain {
		cancel()
	}
	b.cancelChain = nil
	b.browserCtx = nil
}

func (b *Browser) ctx() (context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browserCtx == nil {
		return nil, errNotOpen
	}
	return b.browserCtx, nil
}

func (b *Browser) pageText(ctx context.Context) (string, error) {
	bctx, err := b.ctx()
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Visible text, not markup: class names and script bodies would trip the
	// token extractor.
	var text string
	if err := chromedp.Run(bctx,
		chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &text),
	); err != nil {
		return "", fmt.Errorf("page text: %w", err)
	}
	return text, nil
}
