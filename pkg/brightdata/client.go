package brightdata

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

const defaultBaseURL = "https://api.brightdata.com/datasets/v3"

// DefaultDatasetID is the company dataset used when none is configured.
const DefaultDatasetID = "gd_l1vikfnt1wgvvqz95w"

// Collection job statuses reported by the progress endpoint. Anything
// else is treated as a failure by WaitReady.
const (
	StatusReady   = "ready"
	StatusFailed  = "failed"
	StatusRunning = "running"
)

// Client drives the three-phase collection protocol: Trigger submits the
// inputs and returns an opaque snapshot ID, Progress reports the job
// status, Snapshot fetches the finished payload.
type Client interface {
	Trigger(ctx context.Context, inputs []CompanyInput) (string, error)
	Progress(ctx context.Context, snapshotID string) (string, error)
	Snapshot(ctx context.Context, snapshotID string) ([]Company, error)
}

// CompanyInput is one collection input: the canonical company page URL.
type CompanyInput struct {
	URL string `json:"url"`
}

// Company is one record from a finished snapshot. company_id arrives as
// a bare number in some dataset versions, so it is decoded as json.Number.
type Company struct {
	CompanyID json.Number `json:"company_id"`
	Name      string      `json:"name"`
}

// ID returns the company identifier as a string, empty when absent.
func (c Company) ID() string {
	return c.CompanyID.String()
}

// APIError is returned when Bright Data responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("brightdata: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithDataset overrides the default dataset ID.
func WithDataset(id string) Option {
	return func(c *httpClient) {
		c.datasetID = id
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	token     string
	datasetID string
	baseURL   string
	http      *http.Client
}

// NewClient creates a Bright Data datasets client.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:     token,
		datasetID: DefaultDatasetID,
		baseURL:   defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type triggerResponse struct {
	SnapshotID string `json:"snapshot_id"`
}

func (c *httpClient) Trigger(ctx context.Context, inputs []CompanyInput) (string, error) {
	buf, err := json.Marshal(inputs)
	if err != nil {
		return "", eris.Wrap(err, "brightdata: marshal trigger inputs")
	}

	q := url.Values{}
	q.Set("dataset_id", c.datasetID)
	q.Set("include_errors", "true")
	endpoint := fmt.Sprintf("%s/trigger?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", eris.Wrap(err, "brightdata: create trigger request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	var resp triggerResponse
	if err := c.do(req, &resp); err != nil {
		return "", eris.Wrap(err, "brightdata: trigger collection")
	}
	if resp.SnapshotID == "" {
		return "", eris.New("brightdata: trigger response has no snapshot_id")
	}
	return resp.SnapshotID, nil
}

type progressResponse struct {
	Status string `json:"status"`
}

func (c *httpClient) Progress(ctx context.Context, snapshotID string) (string, error) {
	endpoint := fmt.Sprintf("%s/progress/%s", c.baseURL, snapshotID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", eris.Wrap(err, "brightdata: create progress request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	var resp progressResponse
	if err := c.do(req, &resp); err != nil {
		return "", eris.Wrap(err, fmt.Sprintf("brightdata: check progress %s", snapshotID))
	}
	return resp.Status, nil
}

func (c *httpClient) Snapshot(ctx context.Context, snapshotID string) ([]Company, error) {
	endpoint := fmt.Sprintf("%s/snapshot/%s?format=json", c.baseURL, snapshotID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "brightdata: create snapshot request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	var companies []Company
	if err := c.do(req, &companies); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("brightdata: fetch snapshot %s", snapshotID))
	}
	return companies, nil
}

func (c *httpClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrap(err, "decode response")
	}

	return nil
}
