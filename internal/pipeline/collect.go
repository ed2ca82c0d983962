package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/adwatch/internal/model"
	"github.com/sells-group/adwatch/pkg/brightdata"
)

// Collector runs the asynchronous company collection for one batch:
// trigger with every resolved company URL, poll until ready, fetch the
// snapshot. Any phase failing fails the whole collection; the caller
// proceeds with an empty company set rather than aborting the batch.
type Collector struct {
	client       brightdata.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
	log          *zap.Logger
}

// NewCollector creates a collector with the given fixed poll settings.
func NewCollector(client brightdata.Client, pollInterval, pollTimeout time.Duration) *Collector {
	return &Collector{
		client:       client,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		log:          zap.L().With(zap.String("component", "pipeline.collector")),
	}
}

// Collect resolves company URLs from the batch profiles and runs the
// trigger/poll/fetch protocol. Profiles without a usable company
// reference are skipped; with no references at all the service is not
// called and an empty set is returned.
func (c *Collector) Collect(ctx context.Context, profiles []model.Profile) ([]model.Company, error) {
	var inputs []brightdata.CompanyInput
	for _, p := range profiles {
		if u := ResolveCompanyURL(p); u != "" {
			inputs = append(inputs, brightdata.CompanyInput{URL: u})
		}
	}
	if len(inputs) == 0 {
		c.log.Info("no company references in batch, skipping collection")
		return nil, nil
	}

	c.log.Info("triggering company collection", zap.Int("companies", len(inputs)))
	snapshotID, err := c.client.Trigger(ctx, inputs)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: trigger collection")
	}

	if err := brightdata.WaitReady(ctx, c.client, snapshotID,
		brightdata.WithPollInterval(c.pollInterval),
		brightdata.WithPollTimeout(c.pollTimeout),
	); err != nil {
		return nil, eris.Wrap(err, "pipeline: wait for collection")
	}

	records, err := c.client.Snapshot(ctx, snapshotID)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch collection results")
	}

	companies := make([]model.Company, 0, len(records))
	for _, r := range records {
		companies = append(companies, model.Company{
			ID:   r.ID(),
			Name: r.Name,
		})
	}

	c.log.Info("company collection complete",
		zap.String("snapshot_id", snapshotID),
		zap.Int("companies", len(companies)),
	)
	return companies, nil
}
