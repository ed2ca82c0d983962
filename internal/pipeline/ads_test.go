package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/adwatch/internal/model"
)

func TestExtractAdCount(t *testing.T) {
	tests := []struct {
		name       string
		page       string
		want       int
		determined bool
	}{
		{"ads match with separator", "Showing results: 1,234 ads match your criteria", 1234, true},
		{"single ad", "1 ad matches", 1, true},
		{"ads found", "42 ads found for this advertiser", 42, true},
		{"showing prefix", "Currently showing 17 ads", 17, true},
		{"case insensitive", "256 ADS MATCH", 256, true},
		{"no results marker", "No ads to show for this company", 0, true},
		{"no results found marker", "No results found", 0, true},
		{"nothing at all", "<html><body>loading...</body></html>", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, determined := ExtractAdCount(tt.page)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.determined, determined)
		})
	}
}

func TestExtractAdCount_LargestMatchWins(t *testing.T) {
	// The counter is duplicated on the page; the largest value wins.
	page := "5 ads match ... 1,500 ads match"
	got, determined := ExtractAdCount(page)
	require.True(t, determined)
	assert.Equal(t, 1500, got)
}

func TestExtractAdCount_FirstPatternWins(t *testing.T) {
	// "match" outranks "found" even when "found" has the larger number.
	page := "3 ads match and 999 ads found"
	got, determined := ExtractAdCount(page)
	require.True(t, determined)
	assert.Equal(t, 3, got)
}

// mockFetcher implements PageFetcher for counter tests.
type mockFetcher struct {
	pages map[string]string
	err   error
	calls []string
}

func (m *mockFetcher) PageText(ctx context.Context, url string) (string, error) {
	m.calls = append(m.calls, url)
	if m.err != nil {
		return "", m.err
	}
	return m.pages[url], nil
}

func TestCount_AttachesBothMetrics(t *testing.T) {
	allURL := "https://www.linkedin.com/ad-library/search?companyIds=123"
	last30URL := allURL + "&dateOption=last-30-days"

	fetcher := &mockFetcher{pages: map[string]string{
		allURL:    "98 ads match",
		last30URL: "7 ads match",
	}}

	companies := []model.Company{{ID: "123", Name: "Acme"}}
	NewAdCounter(0).Count(context.Background(), fetcher, companies)

	assert.Equal(t, 98, companies[0].AllTimeAds)
	assert.Equal(t, 7, companies[0].Last30Ads)
	assert.Equal(t, []string{allURL, last30URL}, fetcher.calls)
}

func TestCount_SkipsCompaniesWithoutID(t *testing.T) {
	fetcher := &mockFetcher{pages: map[string]string{}}

	companies := []model.Company{{Name: "Mystery Co"}}
	NewAdCounter(0).Count(context.Background(), fetcher, companies)

	assert.Empty(t, fetcher.calls)
	assert.Zero(t, companies[0].AllTimeAds)
}

func TestCount_SessionFailureKeepsEarlierResults(t *testing.T) {
	allURL1 := "https://www.linkedin.com/ad-library/search?companyIds=1"
	last30URL1 := allURL1 + "&dateOption=last-30-days"

	fetcher := &mockFetcher{pages: map[string]string{
		allURL1:    "10 ads match",
		last30URL1: "2 ads match",
	}}

	companies := []model.Company{
		{ID: "1", Name: "First"},
		{ID: "2", Name: "Second"},
	}

	counter := NewAdCounter(0)

	// First company succeeds, then the session dies.
	callCount := 0
	failing := &failAfterFetcher{inner: fetcher, failAfter: 2, callCount: &callCount}
	counter.Count(context.Background(), failing, companies)

	assert.Equal(t, 10, companies[0].AllTimeAds)
	assert.Equal(t, 2, companies[0].Last30Ads)
	assert.Zero(t, companies[1].AllTimeAds, "unprocessed company keeps zero default")
	assert.Zero(t, companies[1].Last30Ads)
}

// failAfterFetcher delegates N calls then fails.
type failAfterFetcher struct {
	inner     PageFetcher
	failAfter int
	callCount *int
}

func (f *failAfterFetcher) PageText(ctx context.Context, url string) (string, error) {
	*f.callCount++
	if *f.callCount > f.failAfter {
		return "", eris.New("browser: session closed")
	}
	return f.inner.PageText(ctx, url)
}

func TestCount_UndeterminedPageCountsAsZero(t *testing.T) {
	allURL := "https://www.linkedin.com/ad-library/search?companyIds=5"
	last30URL := allURL + "&dateOption=last-30-days"

	fetcher := &mockFetcher{pages: map[string]string{
		allURL:    "<html>spinner</html>",
		last30URL: "4 ads match",
	}}

	companies := []model.Company{{ID: "5", Name: "Acme"}}
	NewAdCounter(0).Count(context.Background(), fetcher, companies)

	assert.Zero(t, companies[0].AllTimeAds)
	assert.Equal(t, 4, companies[0].Last30Ads)
}
