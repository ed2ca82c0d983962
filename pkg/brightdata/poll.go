package brightdata

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultPollTimeout  = 300 * time.Second
)

// PollOption configures polling behavior.
type PollOption func(*pollConfig)

type pollConfig struct {
	interval time.Duration
	timeout  time.Duration
}

func defaultPollConfig() pollConfig {
	return pollConfig{
		interval: defaultPollInterval,
		timeout:  defaultPollTimeout,
	}
}

// WithPollInterval overrides the fixed poll interval.
func WithPollInterval(d time.Duration) PollOption {
	return func(c *pollConfig) {
		c.interval = d
	}
}

// WithPollTimeout overrides the default overall timeout (applied only if
// the parent context has no deadline).
func WithPollTimeout(d time.Duration) PollOption {
	return func(c *pollConfig) {
		c.timeout = d
	}
}

// WaitReady polls Progress at a fixed interval until the collection is
// ready, fails, reports an unrecognized status, or the timeout elapses.
// A "failed" or unknown status returns immediately without further polls.
func WaitReady(ctx context.Context, client Client, snapshotID string, opts ...PollOption) error {
	cfg := defaultPollConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	for {
		status, err := client.Progress(ctx, snapshotID)
		if err != nil {
			return eris.Wrap(err, fmt.Sprintf("brightdata: poll snapshot %s", snapshotID))
		}

		switch status {
		case StatusReady:
			return nil
		case StatusFailed:
			return eris.Errorf("brightdata: snapshot %s failed", snapshotID)
		case StatusRunning:
			// keep waiting
		default:
			return eris.Errorf("brightdata: snapshot %s returned unknown status %q", snapshotID, status)
		}

		select {
		case <-ctx.Done():
			return eris.Wrap(ctx.Err(), fmt.Sprintf("brightdata: poll snapshot %s timed out", snapshotID))
		case <-time.After(cfg.interval):
		}
	}
}
