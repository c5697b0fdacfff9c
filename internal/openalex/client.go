package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/matsen/researchgraph/internal/paper"
	"github.com/matsen/researchgraph/internal/source"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the OpenAlex API base URL.
	BaseURL = "https://api.openalex.org"

	// Name identifies this source in cache keys and metrics.
	Name = "openalex"

	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 5 * time.Second

	// RateLimit stays under the documented 10 requests per second.
	RateLimit = 10.0

	// MaxPerPage is the largest page size OpenAlex accepts.
	MaxPerPage = 200

	// DefaultPerPage is used when the caller passes a non-positive limit.
	DefaultPerPage = 50

	// selectFields keeps responses small; abstracts come back inverted.
	selectFields = "id,title,publication_year,referenced_works,cited_by_count,abstract_inverted_index"

	userAgent = "researchgraph (+https://github.com/matsen/researchgraph)"
)

// Client is a rate-limited, retrying HTTP client for OpenAlex.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	mailto     string
	baseURL    string
	retry      source.RetryPolicy
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMailto sets the contact address that routes requests to the polite pool.
func WithMailto(email string) ClientOption {
	return func(c *Client) {
		c.mailto = email
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetryPolicy overrides the retry budget.
func WithRetryPolicy(p source.RetryPolicy) ClientOption {
	return func(c *Client) {
		c.retry = p
	}
}

// WithRateLimit overrides the requests-per-second pacing.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates a new OpenAlex client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		retry:      source.DefaultRetryPolicy(),
	}

	if email := os.Getenv("OPENALEX_MAILTO"); email != "" {
		c.mailto = email
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements source.Source.
func (c *Client) Name() string {
	return Name
}

// RateLimit returns the effective requests per second.
func (c *Client) RateLimit() float64 {
	return float64(c.limiter.Limit())
}

func (c *Client) get(ctx context.Context, op, path, workID string, query url.Values, out any) error {
	if c.mailto != "" {
		query.Set("mailto", c.mailto)
	}

	start := time.Now()
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		return c.doGet(ctx, path, workID, query, out)
	})
	source.Observe(Name, op, start, err)
	return err
}

func (c *Client) doGet(ctx context.Context, path, workID string, query url.Values, out any) error {
	if err := source.Wait(ctx, c.limiter); err != nil {
		return err
	}

	reqURL := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return source.Transient(fmt.Errorf("%w: %v", ErrNetworkError, err), 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, WorkID: workID}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return source.Transient(apiErr, source.RetryAfter(resp.Header))
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func clampPerPage(limit int) int {
	if limit <= 0 {
		return DefaultPerPage
	}
	if limit > MaxPerPage {
		return MaxPerPage
	}
	return limit
}

// GetPaper fetches a single work, including its referenced works.
func (c *Client) GetPaper(ctx context.Context, id string) (*paper.Paper, error) {
	query := url.Values{"select": {selectFields}}

	var w Work
	if err := c.get(ctx, "get_paper", "/works/"+url.PathEscape(lookupID(id)), id, query, &w); err != nil {
		return nil, err
	}
	if w.ID == "" {
		return nil, ErrNotFound
	}

	p := MapWorkToPaper(w)
	return &p, nil
}

// listWorks runs a filtered /works listing sorted by citation count so that
// truncated pages keep the most-cited entries.
func (c *Client) listWorks(ctx context.Context, op, filter, id string, limit int) ([]paper.Paper, error) {
	query := url.Values{
		"filter":   {filter},
		"select":   {selectFields},
		"sort":     {"cited_by_count:desc"},
		"per-page": {strconv.Itoa(clampPerPage(limit))},
	}

	var resp WorksResponse
	if err := c.get(ctx, op, "/works", id, query, &resp); err != nil {
		return nil, err
	}
	return mapWorks(resp.Results), nil
}

// GetReferences fetches works cited by the given work.
func (c *Client) GetReferences(ctx context.Context, id string, limit int) ([]paper.Paper, error) {
	return c.listWorks(ctx, "get_references", "cited_by:"+ShortID(id), id, limit)
}

// GetCitations fetches works citing the given work.
func (c *Client) GetCitations(ctx context.Context, id string, limit int) ([]paper.Paper, error) {
	return c.listWorks(ctx, "get_citations", "cites:"+ShortID(id), id, limit)
}

// SearchByText runs a relevance-ranked full-text search over works.
func (c *Client) SearchByText(ctx context.Context, text string, limit int) ([]paper.Paper, error) {
	if limit <= 0 {
		limit = 5
	}
	query := url.Values{
		"search":   {text},
		"select":   {selectFields},
		"per-page": {strconv.Itoa(clampPerPage(limit))},
	}

	var resp WorksResponse
	if err := c.get(ctx, "search", "/works", "", query, &resp); err != nil {
		return nil, err
	}
	return mapWorks(resp.Results), nil
}
