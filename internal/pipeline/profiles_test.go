package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/adwatch/pkg/apify"
)

// mockApify implements apify.Client.
type mockApify struct {
	gotURLs []string
	items   []apify.Profile
	err     error
}

func (m *mockApify) ScrapeProfiles(ctx context.Context, urls []string) ([]apify.Profile, error) {
	m.gotURLs = urls
	return m.items, m.err
}

func TestLookup_MapsProfiles(t *testing.T) {
	mock := &mockApify{
		items: []apify.Profile{
			{
				LinkedinURL: "https://www.linkedin.com/in/a",
				Experiences: []apify.Experience{
					{Title: "CEO", CompanyLink1: "https://www.linkedin.com/company/1"},
					{Title: "Advisor", CompanyLink1: "https://www.linkedin.com/company/2"},
				},
			},
		},
	}

	e := NewEnricher(mock)
	profiles, err := e.Lookup(context.Background(), []string{"https://www.linkedin.com/in/a"})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://www.linkedin.com/in/a"}, mock.gotURLs)
	require.Len(t, profiles, 1)
	assert.Equal(t, "https://www.linkedin.com/in/a", profiles[0].URL)
	require.Len(t, profiles[0].Experiences, 2)
	assert.Equal(t, "https://www.linkedin.com/company/1", profiles[0].Experiences[0].CompanyLink)
}

func TestLookup_FailBatch(t *testing.T) {
	mock := &mockApify{err: eris.New("actor crashed")}

	e := NewEnricher(mock)
	profiles, err := e.Lookup(context.Background(), []string{"https://www.linkedin.com/in/a"})
	require.Error(t, err)
	assert.Nil(t, profiles, "no partial results on batch failure")
}
