// Package s2 provides a client for the Semantic Scholar Academic Graph API.
package s2

// S2Paper represents a paper from the Semantic Scholar API.
type S2Paper struct {
	PaperID       string        `json:"paperId"`
	Title         string        `json:"title"`
	Abstract      string        `json:"abstract,omitempty"`
	Year          int           `json:"year,omitempty"`
	CitationCount int           `json:"citationCount,omitempty"`
	References    []S2PaperStub `json:"references,omitempty"`
}

// S2PaperStub is a nested paper carrying only its id.
type S2PaperStub struct {
	PaperID string `json:"paperId"`
}

// CitationResult represents a citation or reference in API responses.
type CitationResult struct {
	CitingPaper *S2Paper `json:"citingPaper,omitempty"` // For citations endpoint
	CitedPaper  *S2Paper `json:"citedPaper,omitempty"`  // For references endpoint
}

// CitationsResponse is the response from the citations endpoint.
type CitationsResponse struct {
	Offset int              `json:"offset"`
	Next   int              `json:"next,omitempty"`
	Data   []CitationResult `json:"data"`
}

// ReferencesResponse is the response from the references endpoint.
type ReferencesResponse struct {
	Offset int              `json:"offset"`
	Next   int              `json:"next,omitempty"`
	Data   []CitationResult `json:"data"`
}

// SearchResponse is the response from the paper search endpoint.
type SearchResponse struct {
	Total  int       `json:"total"`
	Offset int       `json:"offset"`
	Next   int       `json:"next,omitempty"`
	Data   []S2Paper `json:"data"`
}
