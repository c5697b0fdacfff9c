// Package llm answers the "how are these papers related" and "explain this
// abstract" requests with a text-generation backend.
package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Messages returned in place of generated text.
const (
	MsgSummaryUnavailable     = "Text generation is not configured. Set OLLAMA_URL to enable connection summaries."
	MsgSummaryFailed          = "Failed to generate summary due to an error."
	MsgExplanationUnavailable = "Text generation is not configured."
	MsgExplanationFailed      = "Failed to generate explanation."
)

const (
	summaryMaxTokens     = 150
	explanationMaxTokens = 600
)

const summaryPrompt = `Analyze the relationship between the following two research paper abstracts.

Paper A Abstract:
%s

Paper B Abstract:
%s

Explain specifically why Paper B is related to Paper A. Does it refute, extend, or use the methodology? be concise.`

const explanationPrompt = `Explain the following research paper abstract in a clear, structured way for a general audience.

Structure your response as follows:
- **One-sentence Summary**: A high-level overview.
- **Key Contributions**: Use bullet points to list the main findings or methods.
- **Impact**: Briefly explain why this matters.

Abstract:
%s`

// Service wraps a Generator with the prompts and fallbacks. A Service with a
// nil Generator answers every request with the "not configured" message.
type Service struct {
	gen    Generator
	logger *zap.Logger
}

// NewService creates a service. gen may be nil.
func NewService(gen Generator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gen: gen, logger: logger}
}

// Enabled reports whether a generator is configured.
func (s *Service) Enabled() bool {
	return s.gen != nil
}

// SummarizeConnection explains why the target paper relates to the source.
// It never fails; errors become a fallback message.
func (s *Service) SummarizeConnection(ctx context.Context, sourceAbstract, targetAbstract string) string {
	if s.gen == nil {
		return MsgSummaryUnavailable
	}
	out, err := s.gen.Generate(ctx, fmt.Sprintf(summaryPrompt, sourceAbstract, targetAbstract), summaryMaxTokens)
	if err != nil {
		s.logger.Warn("summary generation failed", zap.Error(err))
		return MsgSummaryFailed
	}
	return out
}

// ExplainAbstract restates an abstract for a general audience.
// It never fails; errors become a fallback message.
func (s *Service) ExplainAbstract(ctx context.Context, abstract string) string {
	if s.gen == nil {
		return MsgExplanationUnavailable
	}
	out, err := s.gen.Generate(ctx, fmt.Sprintf(explanationPrompt, abstract), explanationMaxTokens)
	if err != nil {
		s.logger.Warn("explanation generation failed", zap.Error(err))
		return MsgExplanationFailed
	}
	return out
}
