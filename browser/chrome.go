package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"linkscout/config"
	"linkscout/vetting"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// collectScripts lists script sources after the page settles
const collectScripts = `Array.from(document.querySelectorAll("script[src]")).map(s => s.src).filter(Boolean)`

// Chrome renders pages in headless Chrome. Every capture and every page gets
// its own browser, so nothing leaks between requests.
type Chrome struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	navTimeout  time.Duration
	settle      time.Duration
	logger      *zap.Logger
}

// New prepares the allocator; no browser starts until the first capture
func New(cfg config.BrowserConfig, logger *zap.Logger) *Chrome {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.WindowSize(1280, 800),
		chromedp.UserAgent(cfg.UserAgent),
	)

	// Docker and cloud images ship Chrome outside PATH
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
		logger.Info("using chrome binary", zap.String("path", cfg.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Chrome{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		navTimeout:  cfg.NavigationTimeout,
		settle:      cfg.SettleDelay,
		logger:      logger,
	}
}

// Close shuts down the allocator and any browsers still running
func (c *Chrome) Close() {
	c.allocCancel()
}

// newTab starts a fresh browser tied to ctx
func (c *Chrome) newTab(ctx context.Context) (context.Context, func(), error) {
	tabCtx, cancel := chromedp.NewContext(c.allocCtx, chromedp.WithLogf(c.logger.Sugar().Debugf))
	stop := context.AfterFunc(ctx, cancel)
	release := func() {
		stop()
		cancel()
	}

	// the first Run launches the browser; it must not carry a deadline
	if err := chromedp.Run(tabCtx); err != nil {
		release()
		return nil, nil, fmt.Errorf("start browser: %w", err)
	}
	return tabCtx, release, nil
}

// Capture navigates to url and records the redirect chain, markup, script
// sources and a screenshot
func (c *Chrome) Capture(ctx context.Context, url string) (*vetting.CaptureEnvelope, error) {
	tabCtx, release, err := c.newTab(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	mainFrame := string(chromedp.FromContext(tabCtx).Target.TargetID)

	var (
		mu        sync.Mutex
		redirects []string
	)
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			// server-side redirect hops never commit a frame
			if e.RedirectResponse != nil && e.Type == network.ResourceTypeDocument && string(e.FrameID) == mainFrame {
				mu.Lock()
				redirects = append(redirects, e.RedirectResponse.URL)
				mu.Unlock()
			}
		case *page.EventFrameNavigated:
			if e.Frame != nil && e.Frame.ParentID == "" {
				mu.Lock()
				redirects = append(redirects, e.Frame.URL)
				mu.Unlock()
			}
		}
	})

	runCtx, cancel := context.WithTimeout(tabCtx, c.navTimeout)
	defer cancel()

	var (
		finalURL   string
		html       string
		scripts    []string
		screenshot []byte
	)
	start := time.Now()
	err = chromedp.Run(runCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(c.settle),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html),
		chromedp.Evaluate(collectScripts, &scripts),
		chromedp.CaptureScreenshot(&screenshot),
	)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	chain := append([]string(nil), redirects...)
	mu.Unlock()

	c.logger.Debug("page captured",
		zap.String("url", url),
		zap.String("final_url", finalURL),
		zap.Int("redirects", len(chain)),
		zap.Int("scripts", len(scripts)),
		zap.Duration("elapsed", time.Since(start)))

	return &vetting.CaptureEnvelope{
		FinalURL:   finalURL,
		Redirects:  chain,
		HTML:       html,
		Scripts:    scripts,
		Screenshot: screenshot,
	}, nil
}

// NewPage opens a secondary browser; callers must Close it
func (c *Chrome) NewPage(ctx context.Context) (vetting.Page, error) {
	tabCtx, release, err := c.newTab(ctx)
	if err != nil {
		return nil, err
	}
	return &tab{ctx: tabCtx, release: release}, nil
}

type tab struct {
	ctx     context.Context
	release func()
	once    sync.Once
}

func (t *tab) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(t.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	return chromedp.Run(runCtx, actions...)
}

func (t *tab) Navigate(ctx context.Context, url string) error {
	return t.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body"))
}

func (t *tab) HTML(ctx context.Context) (string, error) {
	var html string
	err := t.run(ctx, chromedp.OuterHTML("html", &html))
	return html, err
}

func (t *tab) Close() error {
	t.once.Do(t.release)
	return nil
}
