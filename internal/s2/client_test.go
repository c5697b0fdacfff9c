package s2

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matsen/researchgraph/internal/source"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(
		WithBaseURL(ts.URL),
		WithRateLimit(1000),
		WithRetryPolicy(source.RetryPolicy{MaxRetries: 2, Backoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}),
	)
}

func TestClient_GetPaper(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/paper/DOI:10.1038/nature12373" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if !strings.Contains(r.URL.Query().Get("fields"), "references.paperId") {
			t.Errorf("fields = %s", r.URL.Query().Get("fields"))
		}
		w.Write([]byte(`{
			"paperId": "abc",
			"title": "Seed paper",
			"year": 2013,
			"abstract": null,
			"citationCount": 12,
			"references": [{"paperId": "r1"}, {"paperId": null}, {"paperId": "abc"}, {"paperId": "r2"}]
		}`))
	})

	p, err := c.GetPaper(context.Background(), "10.1038/nature12373")
	if err != nil {
		t.Fatalf("GetPaper() error = %v", err)
	}
	if p.ID != "abc" || p.Title != "Seed paper" || p.Year != 2013 || p.CitationCount != 12 {
		t.Errorf("GetPaper() = %+v", p)
	}
	if len(p.ReferenceIDs) != 2 || p.ReferenceIDs[0] != "r1" || p.ReferenceIDs[1] != "r2" {
		t.Errorf("ReferenceIDs = %v, want [r1 r2] (null and self filtered)", p.ReferenceIDs)
	}
}

func TestClient_GetPaper_NotFound(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusBadRequest} {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(status)
			w.Write([]byte(`{"error": "Paper with id nope not found"}`))
		})

		_, err := c.GetPaper(context.Background(), "nope")
		if !IsNotFound(err) || !source.IsNotFound(err) {
			t.Errorf("status %d: error = %v, want not found", status, err)
		}
		if calls.Load() != 1 {
			t.Errorf("status %d: calls = %d, want 1 (no retry)", status, calls.Load())
		}
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"paperId": "abc", "title": "ok"}`))
	})

	p, err := c.GetPaper(context.Background(), "abc")
	if err != nil {
		t.Fatalf("GetPaper() error = %v", err)
	}
	if p.Title != "ok" {
		t.Errorf("Title = %s", p.Title)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestClient_RateLimitExhaustion(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.GetCitations(context.Background(), "abc", 10)
	if !source.IsUnavailable(err) {
		t.Errorf("error = %v, want upstream unavailable", err)
	}
	if !IsRateLimited(err) {
		t.Errorf("error = %v, want rate limited", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3 (1 + 2 retries)", calls.Load())
	}
}

func TestClient_GetReferencesAndCitations(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "25" {
			t.Errorf("limit = %s, want 25", r.URL.Query().Get("limit"))
		}
		switch r.URL.Path {
		case "/paper/abc/references":
			w.Write([]byte(`{"offset": 0, "data": [
				{"citedPaper": {"paperId": "r1", "title": "Ref one", "citationCount": 100}},
				{"citedPaper": {"paperId": null, "title": "Unresolved"}}
			]}`))
		case "/paper/abc/citations":
			w.Write([]byte(`{"offset": 0, "data": [
				{"citingPaper": {"paperId": "c1", "title": "Citer", "year": 2020}}
			]}`))
		default:
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()
	refs, err := c.GetReferences(ctx, "abc", 25)
	if err != nil {
		t.Fatalf("GetReferences() error = %v", err)
	}
	if len(refs) != 1 || refs[0].ID != "r1" || refs[0].CitationCount != 100 {
		t.Errorf("GetReferences() = %+v", refs)
	}

	cites, err := c.GetCitations(ctx, "abc", 25)
	if err != nil {
		t.Fatalf("GetCitations() error = %v", err)
	}
	if len(cites) != 1 || cites[0].ID != "c1" || cites[0].Year != 2020 {
		t.Errorf("GetCitations() = %+v", cites)
	}
}

func TestClient_SearchByText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/paper/search" || r.URL.Query().Get("query") != "attention is all you need" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		w.Write([]byte(`{"total": 2, "data": [
			{"paperId": "p1", "title": "Attention Is All You Need"},
			{"paperId": "p2", "title": "Follow-up"}
		]}`))
	})

	results, err := c.SearchByText(context.Background(), "attention is all you need", 5)
	if err != nil {
		t.Fatalf("SearchByText() error = %v", err)
	}
	if len(results) != 2 || results[0].ID != "p1" {
		t.Errorf("SearchByText() = %+v", results)
	}
}

func TestClient_SendsAPIKey(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "secret" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		w.Write([]byte(`{"paperId": "abc"}`))
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL), WithAPIKey("secret"), WithRateLimit(1000))
	if _, err := c.GetPaper(context.Background(), "abc"); err != nil {
		t.Fatal(err)
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})
	_, err := c.GetPaper(context.Background(), "abc")
	if !source.IsUnavailable(err) {
		t.Errorf("error = %v, want upstream unavailable", err)
	}
}

func TestClient_RateLimit(t *testing.T) {
	t.Setenv("S2_API_KEY", "")

	if got := NewClient().RateLimit(); got != RateLimitAnonymous {
		t.Errorf("anonymous RateLimit() = %v, want %v", got, RateLimitAnonymous)
	}
	if got := NewClient(WithAPIKey("secret")).RateLimit(); got != RateLimitAuthenticated {
		t.Errorf("keyed RateLimit() = %v, want %v", got, RateLimitAuthenticated)
	}
	if got := NewClient(WithRateLimit(3)).RateLimit(); got != 3 {
		t.Errorf("explicit RateLimit() = %v, want 3", got)
	}
}

func TestClient_SlowLimiterWaitsForDeadline(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"paperId": "abc", "title": "ok"}`))
	}))
	t.Cleanup(ts.Close)
	c := NewClient(WithBaseURL(ts.URL), WithRateLimit(0.001))

	if _, err := c.GetPaper(context.Background(), "abc"); err != nil {
		t.Fatalf("first GetPaper() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := c.GetPaper(ctx, "abc")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("second GetPaper() error = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("gave up after %v, before the deadline", elapsed)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestCheckHTTPErrors_RetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.Header().Set("Retry-After", "7")
	rec.WriteHeader(http.StatusTooManyRequests)

	err := checkHTTPErrors(rec.Result(), "abc")
	var te *source.TransientError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want transient", err)
	}
	if te.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", te.RetryAfter)
	}
}
