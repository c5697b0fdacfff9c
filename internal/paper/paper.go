// Package paper defines the core domain type for bibliographic records.
package paper

import "sort"

// Paper represents a paper record as returned by a bibliographic data source.
type Paper struct {
	// Identity
	ID string `json:"paperId"` // Stable external identifier

	// Metadata
	Title         string `json:"title"`
	Year          int    `json:"year,omitempty"` // 0 if unknown
	Abstract      string `json:"abstract,omitempty"`
	CitationCount int    `json:"citationCount"`

	// Relationships (may be incomplete, coverage varies by source)
	ReferenceIDs []string `json:"referenceIds,omitempty"`
}

// HasYear reports whether the publication year is known.
func (p Paper) HasYear() bool {
	return p.Year > 0
}

// ReferenceSet returns the paper's reference ids as a set.
func (p Paper) ReferenceSet() map[string]bool {
	set := make(map[string]bool, len(p.ReferenceIDs))
	for _, id := range p.ReferenceIDs {
		set[id] = true
	}
	return set
}

// CleanReferenceIDs deduplicates ids, drops empty ids and the paper's own id,
// and returns them sorted. Sources call this before handing a Paper out so
// that a record never lists itself as a reference.
func CleanReferenceIDs(self string, ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == self || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Dedupe removes papers with empty or repeated ids (first occurrence wins)
// and any paper whose id equals exclude.
func Dedupe(papers []Paper, exclude string) []Paper {
	seen := make(map[string]bool, len(papers))
	out := make([]Paper, 0, len(papers))
	for _, p := range papers {
		if p.ID == "" || p.ID == exclude || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

// SortByCitations orders papers by citation count descending, breaking ties
// by id so that the order does not depend on upstream response order.
func SortByCitations(papers []Paper) {
	sort.SliceStable(papers, func(i, j int) bool {
		if papers[i].CitationCount != papers[j].CitationCount {
			return papers[i].CitationCount > papers[j].CitationCount
		}
		return papers[i].ID < papers[j].ID
	})
}
