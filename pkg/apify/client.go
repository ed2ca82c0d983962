package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.apify.com"

// DefaultActorID is the profile scraper actor used when none is configured.
const DefaultActorID = "2SyF0bVxmgGr8IVCZ"

// Client runs the profile scraper actor. The run-sync endpoint blocks
// until the actor finishes and returns its full dataset, so one call
// covers a whole batch; the service may poll internally but callers see
// a single synchronous request.
type Client interface {
	ScrapeProfiles(ctx context.Context, profileURLs []string) ([]Profile, error)
}

// Profile is one scraped profile record. The response order is not
// guaranteed to match the input order.
type Profile struct {
	LinkedinURL string       `json:"linkedinUrl"`
	FullName    string       `json:"fullName"`
	Experiences []Experience `json:"experiences"`
}

// Experience is one employment entry, most recent first.
type Experience struct {
	Title        string `json:"title"`
	CompanyName  string `json:"companyName"`
	CompanyLink1 string `json:"companyLink1"`
}

// APIError is returned when Apify responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("apify: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithActor overrides the default actor ID.
func WithActor(id string) Option {
	return func(c *httpClient) {
		c.actorID = id
	}
}

// WithHTTPClient overrides the default http.Client. The default allows
// ten minutes because run-sync holds the connection for the actor's
// whole run.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	token   string
	actorID string
	baseURL string
	http    *http.Client
}

// NewClient creates an Apify client.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		actorID: DefaultActorID,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type runInput struct {
	ProfileURLs           []string `json:"profileUrls"`
	IncludeContactInfo    bool     `json:"includeContactInfo"`
	IncludeActivityData   bool     `json:"includeActivityData"`
	IncludeEducationData  bool     `json:"includeEducationData"`
	IncludeExperienceData bool     `json:"includeExperienceData"`
}

func (c *httpClient) ScrapeProfiles(ctx context.Context, profileURLs []string) ([]Profile, error) {
	input := runInput{
		ProfileURLs:           profileURLs,
		IncludeContactInfo:    true,
		IncludeActivityData:   true,
		IncludeEducationData:  true,
		IncludeExperienceData: true,
	}

	buf, err := json.Marshal(input)
	if err != nil {
		return nil, eris.Wrap(err, "apify: marshal run input")
	}

	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items?token=%s",
		c.baseURL, c.actorID, url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return nil, eris.Wrap(err, "apify: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "apify: execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "apify: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	var items []Profile
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, eris.Wrap(err, "apify: decode dataset items")
	}

	return items, nil
}
