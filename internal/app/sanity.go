package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// GROQ queries against the workshop document type
const (
	workshopProjection = `{_id, title, date, quarter, year, location, time, description, link}`

	queryAllWorkshops     = `*[_type == "workshop"] | order(date asc) ` + workshopProjection
	queryQuarterWorkshops = `*[_type == "workshop" && quarter == $quarter && year == $year] | order(date asc) ` + workshopProjection
	queryQuarters         = `*[_type == "workshop" && defined(quarter) && defined(year)]{quarter, year}`
)

// SanityClient reads workshops from the Sanity query API.
type SanityClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
}

// SanityBaseURL returns the query endpoint for the configured project. The
// CDN host is used unless a token is set, since authenticated queries are
// not cached by the CDN.
func SanityBaseURL(cfg Config) string {
	host := "apicdn.sanity.io"
	if cfg.Token != "" {
		host = "api.sanity.io"
	}
	return fmt.Sprintf("https://%s.%s/v%s/data/query/%s", cfg.ProjectID, host, cfg.APIVersion, cfg.Dataset)
}

// NewSanityClient creates a client for the query endpoint at baseURL
func NewSanityClient(baseURL, token string) *SanityClient {
	return &SanityClient{
		httpClient: &http.Client{
			Timeout: DefaultRequestTimeout,
		},
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		userAgent: "workshop-calendar",
	}
}

// Workshops returns the workshops of ref ordered by date. A zero ref
// returns every workshop.
func (c *SanityClient) Workshops(ctx context.Context, ref QuarterRef) ([]Workshop, error) {
	var workshops []Workshop
	if ref.IsZero() {
		if err := c.query(ctx, queryAllWorkshops, nil, &workshops); err != nil {
			return nil, err
		}
		return workshops, nil
	}

	params := map[string]any{
		"quarter": string(ref.Quarter),
		"year":    ref.Year,
	}
	if err := c.query(ctx, queryQuarterWorkshops, params, &workshops); err != nil {
		return nil, err
	}
	return workshops, nil
}

// Quarters returns the distinct quarters that have workshops, most recent first
func (c *SanityClient) Quarters(ctx context.Context) ([]QuarterRef, error) {
	var refs []QuarterRef
	if err := c.query(ctx, queryQuarters, nil, &refs); err != nil {
		return nil, err
	}
	return DistinctQuarters(refs), nil
}

// query runs a GROQ query and decodes its result into out
func (c *SanityClient) query(ctx context.Context, groq string, params map[string]any, out any) error {
	values := url.Values{}
	values.Set("query", groq)
	for name, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode param %s: %w", name, err)
		}
		values.Set("$"+name, string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sanity query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sanity query: HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode sanity response: %w", err)
	}
	if len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("decode sanity result: %w", err)
	}
	return nil
}
