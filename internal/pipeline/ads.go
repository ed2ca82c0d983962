package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/adwatch/internal/model"
)

const adLibraryBaseURL = "https://www.linkedin.com/ad-library/search"

// adCountPatterns are tried in priority order against the rendered page;
// the first pattern with any match wins.
var adCountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([\d,]+)\s+ads?\s+match`),
	regexp.MustCompile(`(?i)([\d,]+)\s+ads?\s+found`),
	regexp.MustCompile(`(?i)showing\s+([\d,]+)\s+ads?`),
	regexp.MustCompile(`(?i)found\s+([\d,]+)\s+ads?`),
}

var noAdsPattern = regexp.MustCompile(`(?i)No ads to show|No results found|No ads match`)

// PageFetcher is the browser capability the ad-count stage needs: fetch
// a URL and return the rendered page content after it settles.
type PageFetcher interface {
	PageText(ctx context.Context, url string) (string, error)
}

// ExtractAdCount pulls the ad count out of rendered page content. The
// boolean is false when no count pattern and no explicit no-results
// marker matched; callers treat that as zero but should log it, since
// the output cannot distinguish the two. When one pattern matches more
// than once the largest value wins, which handles counters duplicated
// across the page.
func ExtractAdCount(page string) (int, bool) {
	for _, p := range adCountPatterns {
		matches := p.FindAllStringSubmatch(page, -1)
		if len(matches) == 0 {
			continue
		}
		best := 0
		for _, m := range matches {
			n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
			if err != nil {
				continue
			}
			if n > best {
				best = n
			}
		}
		return best, true
	}

	if noAdsPattern.MatchString(page) {
		return 0, true
	}
	return 0, false
}

// AdCounter attaches ad-library counts to company records using a shared
// browser session. One session serves the whole batch; a session failure
// abandons the remaining companies, which keep their zero defaults.
type AdCounter struct {
	companyWait time.Duration
	log         *zap.Logger
}

// NewAdCounter creates an ad counter. companyWait is the pause between
// companies within a batch.
func NewAdCounter(companyWait time.Duration) *AdCounter {
	return &AdCounter{
		companyWait: companyWait,
		log:         zap.L().With(zap.String("component", "pipeline.adcounter")),
	}
}

// Count visits the unscoped and 30-day ad-library pages for every
// company with an identifier and fills in both metrics in place.
func (a *AdCounter) Count(ctx context.Context, fetcher PageFetcher, companies []model.Company) {
	for i := range companies {
		c := &companies[i]
		if c.ID == "" {
			a.log.Warn("company has no identifier, skipping", zap.String("name", c.Name))
			continue
		}
		if ctx.Err() != nil {
			return
		}

		log := a.log.With(zap.String("company", c.Name), zap.String("company_id", c.ID))

		allTime, ok := a.countPage(ctx, fetcher, adLibraryURL(c.ID, false), log)
		if !ok {
			return
		}
		last30, ok := a.countPage(ctx, fetcher, adLibraryURL(c.ID, true), log)
		if !ok {
			return
		}

		c.AllTimeAds = allTime
		c.Last30Ads = last30
		log.Info("ad counts extracted",
			zap.Int("all_time", allTime),
			zap.Int("last_30_days", last30),
		)

		if a.companyWait > 0 && i < len(companies)-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(a.companyWait):
			}
		}
	}
}

// countPage fetches one ad-library page and extracts its count. The
// second return is false only on a session failure, which ends the
// batch; an undetermined page logs and counts as zero.
func (a *AdCounter) countPage(ctx context.Context, fetcher PageFetcher, url string, log *zap.Logger) (int, bool) {
	page, err := fetcher.PageText(ctx, url)
	if err != nil {
		log.Error("browser session failed, abandoning remaining companies",
			zap.String("url", url),
			zap.Error(err),
		)
		return 0, false
	}

	count, determined := ExtractAdCount(page)
	if !determined {
		// Indistinguishable from zero in the output; the log is the only
		// record that the page gave no answer.
		log.Warn("no ad count found on page", zap.String("url", url))
	}
	return count, true
}

func adLibraryURL(companyID string, last30 bool) string {
	u := fmt.Sprintf("%s?companyIds=%s", adLibraryBaseURL, companyID)
	if last30 {
		u += "&dateOption=last-30-days"
	}
	return u
}
