package sheets

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

const defaultBaseURL = "https://sheets.googleapis.com/v4"

// Client performs Google Sheets value operations against one spreadsheet
// at a time. Rows are 1-based and the header row sits at row 1.
type Client interface {
	Title(ctx context.Context, sheetID string) (string, error)
	Values(ctx context.Context, sheetID, rng string) ([][]string, error)
	BatchUpdate(ctx context.Context, sheetID string, data []ValueRange) error
}

// ValueRange is a single A1-addressed cell range with its values.
type ValueRange struct {
	Range  string  `json:"range"`
	Values [][]any `json:"values"`
}

// APIError is returned when the Sheets API responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sheets: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a Sheets client authenticating with a bearer token.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type spreadsheetResponse struct {
	Sheets []struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

// Title returns the title of the first sheet in the spreadsheet. Ranges
// passed to Values and BatchUpdate are addressed against this tab.
func (c *httpClient) Title(ctx context.Context, sheetID string) (string, error) {
	path := fmt.Sprintf("/spreadsheets/%s?fields=sheets.properties.title", sheetID)

	var resp spreadsheetResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return "", eris.Wrap(err, "sheets: get spreadsheet metadata")
	}
	if len(resp.Sheets) == 0 {
		return "", eris.Errorf("sheets: spreadsheet %s has no sheets", sheetID)
	}
	return resp.Sheets[0].Properties.Title, nil
}

type valuesResponse struct {
	Values [][]string `json:"values"`
}

// Values fetches the cell values for an A1 range, e.g. "Sheet1!A1:Z".
// Rows shorter than the widest row are returned as-is, not padded.
func (c *httpClient) Values(ctx context.Context, sheetID, rng string) ([][]string, error) {
	path := fmt.Sprintf("/spreadsheets/%s/values/%s", sheetID, url.PathEscape(rng))

	var resp valuesResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, eris.Wrap(err, "sheets: get values")
	}
	return resp.Values, nil
}

type batchUpdateRequest struct {
	ValueInputOption string       `json:"valueInputOption"`
	Data             []ValueRange `json:"data"`
}

// BatchUpdate writes all ranges in one request. Values are written raw,
// without formula evaluation.
func (c *httpClient) BatchUpdate(ctx context.Context, sheetID string, data []ValueRange) error {
	body := batchUpdateRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}

	path := fmt.Sprintf("/spreadsheets/%s/values:batchUpdate", sheetID)
	if err := c.post(ctx, path, body, &struct{}{}); err != nil {
		return eris.Wrap(err, "sheets: batch update")
	}
	return nil
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	return c.do(req, out)
}

func (c *httpClient) post(ctx context.Context, path string, body any, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	return c.do(req, out)
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
