package main

import (
	"context"

	"github.com/sells-group/adwatch/internal/browser"
	"github.com/sells-group/adwatch/internal/config"
	"github.com/sells-group/adwatch/internal/monitor"
	"github.com/sells-group/adwatch/internal/pipeline"
	"github.com/sells-group/adwatch/internal/sheet"
	"github.com/sells-group/adwatch/pkg/apify"
	"github.com/sells-group/adwatch/pkg/brightdata"
	"github.com/sells-group/adwatch/pkg/sheets"
)

// newScanner builds the sheet scanner on its own so one-shot commands can
// use it without the rest of the pipeline.
func newScanner(cfg *config.Config) *sheet.Scanner {
	return sheet.NewScanner(sheets.NewClient(cfg.Sheet.Token), cfg.Sheet.ID)
}

// newLoop wires the full monitor from configuration.
func newLoop(cfg *config.Config) *monitor.Loop {
	sheetsClient := sheets.NewClient(cfg.Sheet.Token)
	apifyClient := apify.NewClient(cfg.Apify.Token, apify.WithActor(cfg.Apify.ActorID))
	brightClient := brightdata.NewClient(cfg.BrightData.Token, brightdata.WithDataset(cfg.BrightData.DatasetID))

	factory := func(ctx context.Context) (monitor.Browser, error) {
		return browser.New(ctx, cfg.Browser)
	}

	return monitor.NewLoop(cfg,
		sheet.NewScanner(sheetsClient, cfg.Sheet.ID),
		pipeline.NewEnricher(apifyClient),
		pipeline.NewCollector(brightClient, cfg.BrightData.PollInterval(), cfg.BrightData.PollTimeout()),
		pipeline.NewAdCounter(cfg.Browser.CompanyWait()),
		sheet.NewWriter(sheetsClient, cfg.Sheet.ID),
		factory,
		monitor.NewHealth(),
	)
}
