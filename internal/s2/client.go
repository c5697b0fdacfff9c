package s2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
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
	// BaseURL is the Semantic Scholar Graph API base URL.
	BaseURL = "https://api.semanticscholar.org/graph/v1"

	// Name identifies this source in cache keys and metrics.
	Name = "s2"

	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 5 * time.Second

	// Rate limits per S2 documentation: unauthenticated traffic shares a
	// pool, keyed traffic gets its own.
	RateLimitAnonymous     = 1.0
	RateLimitAuthenticated = 10.0

	// MaxListLimit is the largest page the listing endpoints accept.
	MaxListLimit = 1000

	// DefaultListLimit is used when the caller passes a non-positive limit.
	DefaultListLimit = 100

	// paperFields are requested for full records, including reference ids.
	paperFields = "paperId,title,year,abstract,citationCount,references.paperId"

	// listFields are requested for listing entries.
	listFields = "paperId,title,year,abstract,citationCount"
)

// Client is a rate-limited, retrying HTTP client for the S2 Graph API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
	retry      source.RetryPolicy
	rateLimit  float64 // 0 means pick from apiKey
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key for authenticated requests.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
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
		c.rateLimit = rps
	}
}

// NewClient creates a new S2 client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    BaseURL,
		retry:      source.DefaultRetryPolicy(),
	}

	// Check for API key in environment
	if key := os.Getenv("S2_API_KEY"); key != "" {
		c.apiKey = key
	}

	for _, opt := range opts {
		opt(c)
	}

	rps := c.rateLimit
	if rps <= 0 {
		rps = RateLimitAnonymous
		if c.apiKey != "" {
			rps = RateLimitAuthenticated
		}
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), 1)

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

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
// Rate limiting and server errors are marked transient.
func checkHTTPErrors(resp *http.Response, paperID string) error {
	if resp.StatusCode < 400 {
		return nil
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    readMessage(resp.Body),
		PaperID:    paperID,
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return source.Transient(apiErr, source.RetryAfter(resp.Header))
	}
	return apiErr
}

// readMessage extracts the "error" or "message" field of an S2 error body.
func readMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return "no response body"
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(data))
}

// get issues a GET with retries and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, op, path, paperID string, query url.Values, out any) error {
	start := time.Now()
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		return c.doGet(ctx, path, paperID, query, out)
	})
	source.Observe(Name, op, start, err)
	return err
}

func (c *Client) doGet(ctx context.Context, path, paperID string, query url.Values, out any) error {
	if err := source.Wait(ctx, c.limiter); err != nil {
		return err
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return source.Transient(fmt.Errorf("%w: %v", ErrNetworkError, err), 0)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp, paperID); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// GetPaper fetches a paper, including its reference ids.
func (c *Client) GetPaper(ctx context.Context, paperID string) (*paper.Paper, error) {
	id := ParsePaperID(paperID).String()
	query := url.Values{"fields": {paperFields}}

	var raw S2Paper
	if err := c.get(ctx, "get_paper", "/paper/"+pathEscaper.Replace(id), paperID, query, &raw); err != nil {
		return nil, err
	}
	if raw.PaperID == "" {
		return nil, ErrNotFound
	}

	p := MapS2ToPaper(raw)
	return &p, nil
}

// GetReferences fetches papers referenced by the given paper.
func (c *Client) GetReferences(ctx context.Context, paperID string, limit int) ([]paper.Paper, error) {
	id := ParsePaperID(paperID).String()
	query := url.Values{
		"fields": {listFields},
		"limit":  {strconv.Itoa(clampLimit(limit))},
	}

	var resp ReferencesResponse
	if err := c.get(ctx, "get_references", "/paper/"+pathEscaper.Replace(id)+"/references", paperID, query, &resp); err != nil {
		return nil, err
	}
	return mapCitationResults(resp.Data, true), nil
}

// GetCitations fetches papers that cite the given paper.
func (c *Client) GetCitations(ctx context.Context, paperID string, limit int) ([]paper.Paper, error) {
	id := ParsePaperID(paperID).String()
	query := url.Values{
		"fields": {listFields},
		"limit":  {strconv.Itoa(clampLimit(limit))},
	}

	var resp CitationsResponse
	if err := c.get(ctx, "get_citations", "/paper/"+pathEscaper.Replace(id)+"/citations", paperID, query, &resp); err != nil {
		return nil, err
	}
	return mapCitationResults(resp.Data, false), nil
}

// SearchByText searches for papers by keyword relevance.
func (c *Client) SearchByText(ctx context.Context, text string, limit int) ([]paper.Paper, error) {
	if limit <= 0 {
		limit = 10
	}
	query := url.Values{
		"query":  {text},
		"fields": {listFields},
		"limit":  {strconv.Itoa(limit)},
	}

	var resp SearchResponse
	if err := c.get(ctx, "search", "/paper/search", "", query, &resp); err != nil {
		return nil, err
	}

	papers := make([]paper.Paper, 0, len(resp.Data))
	for _, p := range resp.Data {
		if p.PaperID == "" {
			continue
		}
		papers = append(papers, MapS2ToPaper(p))
	}
	return papers, nil
}
