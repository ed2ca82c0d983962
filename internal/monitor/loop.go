// Package monitor runs the continuous scan/process loop that keeps the
// tracking sheet's ad metrics filled in.
package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/adwatch/internal/config"
	"github.com/sells-group/adwatch/internal/model"
	"github.com/sells-group/adwatch/internal/pipeline"
	"github.com/sells-group/adwatch/internal/resilience"
)

// Scanner finds rows still missing ad metrics.
type Scanner interface {
	Scan(ctx context.Context) ([]model.PendingRow, error)
}

// Enricher looks up profile data for a batch of profile URLs.
type Enricher interface {
	Lookup(ctx context.Context, profileURLs []string) ([]model.Profile, error)
}

// Collector resolves profile company references to company records.
type Collector interface {
	Collect(ctx context.Context, profiles []model.Profile) ([]model.Company, error)
}

// Counter attaches ad metrics to companies via a live page fetcher.
type Counter interface {
	Count(ctx context.Context, fetcher pipeline.PageFetcher, companies []model.Company)
}

// Writer persists computed row updates back to the sheet.
type Writer interface {
	Write(ctx context.Context, updates []model.RowUpdate) error
}

// Browser is a live page session used for one batch and then closed.
type Browser interface {
	pipeline.PageFetcher
	Login(ctx context.Context) error
	Close()
}

// BrowserFactory starts a fresh browser session. The loop opens one per
// batch so a wedged session cannot poison the rest of the run.
type BrowserFactory func(ctx context.Context) (Browser, error)

// Loop is the long-running monitor. Run blocks until the context is
// cancelled.
type Loop struct {
	cfg     *config.Config
	scanner Scanner
	enrich  Enricher
	collect Collector
	counter Counter
	writer  Writer
	browser BrowserFactory
	health  *Health
	log     *zap.Logger
}

// NewLoop assembles a monitor from its stages.
func NewLoop(cfg *config.Config, scanner Scanner, enrich Enricher, collect Collector, counter Counter, writer Writer, browser BrowserFactory, health *Health) *Loop {
	return &Loop{
		cfg:     cfg,
		scanner: scanner,
		enrich:  enrich,
		collect: collect,
		counter: counter,
		writer:  writer,
		browser: browser,
		health:  health,
		log:     zap.L().With(zap.String("component", "monitor")),
	}
}

// Health exposes the loop's liveness tracker.
func (l *Loop) Health() *Health {
	return l.health
}

// Run executes scan passes until ctx is cancelled. It always returns
// ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	l.health.setRunning(true)
	defer l.health.setRunning(false)

	l.log.Info("monitor started",
		zap.Int("batch_size", l.cfg.Monitor.BatchSize),
		zap.Duration("idle_wait", l.cfg.Monitor.IdleWait()))

	for {
		if err := ctx.Err(); err != nil {
			l.log.Info("monitor stopping")
			return err
		}

		l.pass(ctx)
	}
}

// pass runs one full scan/process cycle. Failures are absorbed: the loop
// logs, records the error, waits, and returns to scanning.
func (l *Loop) pass(ctx context.Context) {
	l.health.setState(StateScanning)

	pending, err := resilience.DoVal(ctx, l.retryConfig("sheets", "scan"), func(ctx context.Context) ([]model.PendingRow, error) {
		return l.scanner.Scan(ctx)
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		l.log.Error("scan failed", zap.Error(err))
		l.health.passFailed(err)
		l.wait(ctx, l.cfg.Monitor.ErrorWait(), StateWaiting)
		return
	}

	if len(pending) == 0 {
		l.log.Debug("no rows pending")
		l.health.passComplete(0)
		l.wait(ctx, l.cfg.Monitor.IdleWait(), StateIdle)
		return
	}

	l.log.Info("rows pending", zap.Int("count", len(pending)))
	l.health.setState(StateProcessing)

	written := 0
	for start := 0; start < len(pending); start += l.cfg.Monitor.BatchSize {
		if ctx.Err() != nil {
			return
		}

		end := start + l.cfg.Monitor.BatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		n, err := l.processBatch(ctx, batch)
		written += n
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.log.Error("batch failed", zap.Error(err),
				zap.Int("batch_start", start), zap.Int("batch_size", len(batch)))
			l.health.passFailed(err)
			l.wait(ctx, l.cfg.Monitor.ErrorWait(), StateWaiting)
			return
		}
	}

	l.health.passComplete(written)
}

// processBatch runs one batch through the full pipeline and returns the
// number of rows written.
func (l *Loop) processBatch(ctx context.Context, batch []model.PendingRow) (int, error) {
	urls := make([]string, 0, len(batch))
	for _, row := range batch {
		urls = append(urls, row.ProfileURL)
	}

	profiles, err := resilience.DoVal(ctx, l.retryConfig("apify", "lookup"), func(ctx context.Context) ([]model.Profile, error) {
		return l.enrich.Lookup(ctx, urls)
	})
	if err != nil {
		return 0, err
	}

	// Collection failures are not fatal to the batch: rows still get
	// written with zero metrics so they are not rescanned forever.
	companies, err := l.collect.Collect(ctx, profiles)
	if err != nil {
		l.log.Warn("company collection failed, writing zero metrics", zap.Error(err))
		companies = nil
	}

	if len(companies) > 0 {
		if err := l.countAds(ctx, companies); err != nil {
			return 0, err
		}
	}

	updates := pipeline.Merge(batch, profiles, companies)
	if len(updates) == 0 {
		return 0, nil
	}

	err = resilience.Do(ctx, l.retryConfig("sheets", "write"), func(ctx context.Context) error {
		return l.writer.Write(ctx, updates)
	})
	if err != nil {
		return 0, err
	}

	l.log.Info("batch written", zap.Int("rows", len(updates)))
	return len(updates), nil
}

// countAds opens a fresh browser session, authenticates, and attaches ad
// metrics to the companies in place.
func (l *Loop) countAds(ctx context.Context, companies []model.Company) error {
	browser, err := l.browser(ctx)
	if err != nil {
		return err
	}
	defer browser.Close()

	if err := browser.Login(ctx); err != nil {
		return err
	}

	l.counter.Count(ctx, browser, companies)
	return nil
}

func (l *Loop) retryConfig(service, operation string) resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.OnRetry = resilience.RetryLogger(service, operation)
	return cfg
}

// wait sleeps for d in the given state, returning early on cancellation.
func (l *Loop) wait(ctx context.Context, d time.Duration, state string) {
	l.health.setState(state)
	sleepCtx(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
