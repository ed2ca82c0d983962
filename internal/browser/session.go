// Package browser owns the automated Chrome session used to read the
// ad-library pages. The target site exposes no reliable load-complete
// signal for its dynamic content, so navigation is followed by a fixed
// settle delay rather than an event-driven wait.
package browser

import (
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/adwatch/internal/config"
)

const loginURL = "https://www.linkedin.com/login"

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const pageTimeout = 90 * time.Second

// Session is a single live Chrome instance, reused for every page within
// a batch. It is not safe for concurrent use; the monitor drives one
// session at a time.
type Session struct {
	cfg config.BrowserConfig
	ctx context.Context
	log *zap.Logger

	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// New starts a Chrome instance. Close must be called on every exit path
// to release the OS process.
func New(parent context.Context, cfg config.BrowserConfig) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !cfg.Visible),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(userAgent),
	)
	if bin := findChromeBinary(cfg.ChromePath); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)

	// Suppress chromedp log noise
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// Force the browser process to start now so setup failures surface
	// here instead of on the first navigation.
	if err := chromedp.Run(ctx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, eris.Wrap(err, "browser: start chrome")
	}

	return &Session{
		cfg:         cfg,
		ctx:         ctx,
		log:         zap.L().With(zap.String("component", "browser")),
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
	}, nil
}

// Login authenticates against the target site when credentials are
// configured; without credentials it is a no-op and pages are fetched
// anonymously.
func (s *Session) Login(ctx context.Context) error {
	if s.cfg.Username == "" || s.cfg.Password == "" {
		s.log.Info("no credentials configured, skipping login")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.log.Info("logging in", zap.String("url", loginURL))

	tctx, cancel := context.WithTimeout(s.ctx, pageTimeout)
	defer cancel()

	err := chromedp.Run(tctx,
		chromedp.Navigate(loginURL),
		chromedp.WaitVisible(`#username`, chromedp.ByID),
		chromedp.SendKeys(`#username`, s.cfg.Username, chromedp.ByID),
		chromedp.SendKeys(`#password`, s.cfg.Password, chromedp.ByID),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
	)
	if err != nil {
		return eris.Wrap(err, "browser: login")
	}
	return nil
}

// PageText navigates to url, waits for content to settle, scrolls the
// page to trigger lazy rendering, and returns the full rendered markup.
func (s *Session) PageText(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.log.Debug("fetching page", zap.String("url", url))

	tctx, cancel := context.WithTimeout(s.ctx, pageTimeout)
	defer cancel()

	var html string
	err := chromedp.Run(tctx,
		chromedp.Navigate(url),
		chromedp.Sleep(s.cfg.SettleWait()),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(2*time.Second),
		chromedp.Evaluate(`window.scrollTo(0, 0)`, nil),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", eris.Wrap(err, "browser: fetch page")
	}
	return html, nil
}

// Close shuts down the Chrome instance and its allocator.
func (s *Session) Close() {
	s.cancelCtx()
	s.cancelAlloc()
}

// findChromeBinary locates the Chrome/Chromium binary, preferring the
// configured path, then CHROME_BIN, then well-known names and locations.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
