package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/adwatch/internal/model"
	"github.com/sells-group/adwatch/pkg/apify"
)

// Enricher resolves a batch of profile URLs into structured profiles via
// one blocking bulk lookup. The whole batch fails together; there are no
// partial results. Response order does not match input order.
type Enricher struct {
	client apify.Client
	log    *zap.Logger
}

// NewEnricher creates a profile enricher.
func NewEnricher(client apify.Client) *Enricher {
	return &Enricher{
		client: client,
		log:    zap.L().With(zap.String("component", "pipeline.enricher")),
	}
}

// Lookup fetches profile data for every URL in the batch.
func (e *Enricher) Lookup(ctx context.Context, profileURLs []string) ([]model.Profile, error) {
	items, err := e.client.ScrapeProfiles(ctx, profileURLs)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: profile lookup")
	}

	profiles := make([]model.Profile, 0, len(items))
	for _, it := range items {
		p := model.Profile{URL: it.LinkedinURL}
		for _, exp := range it.Experiences {
			p.Experiences = append(p.Experiences, model.Experience{
				Title:       exp.Title,
				CompanyLink: exp.CompanyLink1,
			})
		}
		profiles = append(profiles, p)
	}

	e.log.Info("profile lookup complete",
		zap.Int("requested", len(profileURLs)),
		zap.Int("returned", len(profiles)),
	)
	return profiles, nil
}
