package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewOllama_Defaults(t *testing.T) {
	o := NewOllama()
	if o.baseURL != DefaultOllamaURL {
		t.Errorf("baseURL = %s, want %s", o.baseURL, DefaultOllamaURL)
	}
	if o.ModelName() != DefaultModel {
		t.Errorf("model = %s, want %s", o.ModelName(), DefaultModel)
	}
	if o.client.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", o.client.Timeout, DefaultTimeout)
	}
}

func TestNewOllama_WithOptions(t *testing.T) {
	o := NewOllama(
		WithBaseURL("http://custom:8080/"),
		WithModel("mistral"),
		WithModel(""),
		WithTimeout(5*time.Second),
	)
	if o.baseURL != "http://custom:8080" {
		t.Errorf("baseURL = %s", o.baseURL)
	}
	if o.model != "mistral" {
		t.Errorf("model = %s, empty model should not override", o.model)
	}
	if o.client.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", o.client.Timeout)
	}
}

func TestOllama_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != apiPathGenerate || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req ollamaGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Model != "test-model" || req.Stream {
			t.Errorf("request = %+v", req)
		}
		if req.Options == nil || req.Options.NumPredict != 42 {
			t.Errorf("options = %+v", req.Options)
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "  generated text\n", Done: true})
	}))
	defer server.Close()

	o := NewOllama(WithBaseURL(server.URL), WithModel("test-model"))
	out, err := o.Generate(context.Background(), "hello", 42)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "generated text" {
		t.Errorf("out = %q", out)
	}
}

func TestOllama_GenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not loaded", http.StatusInternalServerError)
			},
			want: "status 500",
		},
		{
			name: "error field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error": "model 'x' not found"}`))
			},
			want: "not found",
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{`))
			},
			want: "decoding response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := NewOllama(WithBaseURL(server.URL)).Generate(context.Background(), "p", 0)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestOllama_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models": []}`))
	}))
	if err := NewOllama(WithBaseURL(server.URL)).IsAvailable(context.Background()); err != nil {
		t.Errorf("IsAvailable: %v", err)
	}
	server.Close()

	if err := NewOllama(WithBaseURL(server.URL)).IsAvailable(context.Background()); err == nil {
		t.Error("expected error after server closed")
	}
}

type stubGenerator struct {
	prompt    string
	maxTokens int
	out       string
	err       error
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	g.prompt = prompt
	g.maxTokens = maxTokens
	return g.out, g.err
}

func TestService_SummarizeConnection(t *testing.T) {
	gen := &stubGenerator{out: "B extends A."}
	s := NewService(gen, nil)

	got := s.SummarizeConnection(context.Background(), "abstract one", "abstract two")
	if got != "B extends A." {
		t.Errorf("summary = %q", got)
	}
	if !strings.Contains(gen.prompt, "Paper A Abstract:\nabstract one") || !strings.Contains(gen.prompt, "abstract two") {
		t.Errorf("prompt missing abstracts: %q", gen.prompt)
	}
	if gen.maxTokens != summaryMaxTokens {
		t.Errorf("maxTokens = %d", gen.maxTokens)
	}
}

func TestService_Fallbacks(t *testing.T) {
	ctx := context.Background()

	disabled := NewService(nil, nil)
	if disabled.Enabled() {
		t.Error("nil generator should be disabled")
	}
	if got := disabled.SummarizeConnection(ctx, "a", "b"); got != MsgSummaryUnavailable {
		t.Errorf("summary = %q", got)
	}
	if got := disabled.ExplainAbstract(ctx, "a"); got != MsgExplanationUnavailable {
		t.Errorf("explanation = %q", got)
	}

	failing := NewService(&stubGenerator{err: errors.New("boom")}, nil)
	if got := failing.SummarizeConnection(ctx, "a", "b"); got != MsgSummaryFailed {
		t.Errorf("summary = %q", got)
	}
	if got := failing.ExplainAbstract(ctx, "a"); got != MsgExplanationFailed {
		t.Errorf("explanation = %q", got)
	}
}

func TestService_ExplainAbstract(t *testing.T) {
	gen := &stubGenerator{out: "- **One-sentence Summary**: ..."}
	s := NewService(gen, nil)

	if got := s.ExplainAbstract(context.Background(), "we study graphs"); got != gen.out {
		t.Errorf("explanation = %q", got)
	}
	if !strings.HasSuffix(gen.prompt, "Abstract:\nwe study graphs") || gen.maxTokens != explanationMaxTokens {
		t.Errorf("prompt = %q maxTokens = %d", gen.prompt, gen.maxTokens)
	}
}
