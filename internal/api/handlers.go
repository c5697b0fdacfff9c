package api

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 25
)

// SearchResult is one entry of GET /search.
type SearchResult struct {
	PaperID       string `json:"paperId"`
	Title         string `json:"title"`
	Year          *int   `json:"year"`
	CitationCount int    `json:"citationCount"`
	Abstract      string `json:"abstract,omitempty"`
}

// SearchResponse is the body of GET /search.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// SummarizeRequest is the body of POST /summarize_connection.
type SummarizeRequest struct {
	SourceAbstract string `json:"source_abstract" validate:"required"`
	TargetAbstract string `json:"target_abstract" validate:"required"`
}

// ExplainRequest is the body of POST /explain_abstract.
type ExplainRequest struct {
	Abstract string `json:"abstract" validate:"required"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "ResearchGraph backend is running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy", "source": s.src.Name()})
}

// parseDimension reads an optional integer query parameter.
func parseDimension(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// handleBuildGraph handles GET /build_graph?paper_id=&width=&height=
func (s *Server) handleBuildGraph(w http.ResponseWriter, r *http.Request) {
	paperID := strings.TrimSpace(r.URL.Query().Get("paper_id"))
	if paperID == "" {
		s.respondError(w, http.StatusBadRequest, "paper_id is required")
		return
	}
	width, err := parseDimension(r, "width")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "width must be an integer")
		return
	}
	height, err := parseDimension(r, "height")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "height must be an integer")
		return
	}

	payload, err := s.builder.Build(r.Context(), paperID, width, height)
	if err != nil {
		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("build_graph failed", zap.String("paper_id", paperID), zap.Error(err))
		}
		s.respondError(w, status, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, payload)
}

// handleSearch handles GET /search?query=&limit=
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxSearchLimit)
	}

	papers, err := s.src.SearchByText(r.Context(), query, limit)
	if err != nil {
		s.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		s.respondError(w, StatusFor(err), err.Error())
		return
	}

	resp := SearchResponse{Results: make([]SearchResult, 0, len(papers))}
	for _, p := range papers {
		result := SearchResult{
			PaperID:       p.ID,
			Title:         p.Title,
			CitationCount: p.CitationCount,
			Abstract:      p.Abstract,
		}
		if p.HasYear() {
			y := p.Year
			result.Year = &y
		}
		resp.Results = append(resp.Results, result)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleSummarize handles POST /summarize_connection
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary := s.llm.SummarizeConnection(r.Context(), req.SourceAbstract, req.TargetAbstract)
	s.respondJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

// handleExplain handles POST /explain_abstract
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req ExplainRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	explanation := s.llm.ExplainAbstract(r.Context(), req.Abstract)
	s.respondJSON(w, http.StatusOK, map[string]string{"explanation": explanation})
}
