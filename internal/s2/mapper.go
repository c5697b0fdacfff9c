package s2

import "github.com/matsen/researchgraph/internal/paper"

// MapS2ToPaper converts an S2Paper to a Paper. Nested references without an
// id and self-citations are dropped.
func MapS2ToPaper(p S2Paper) paper.Paper {
	refIDs := make([]string, 0, len(p.References))
	for _, r := range p.References {
		refIDs = append(refIDs, r.PaperID)
	}

	out := paper.Paper{
		ID:            p.PaperID,
		Title:         p.Title,
		Year:          p.Year,
		Abstract:      p.Abstract,
		CitationCount: p.CitationCount,
	}
	if len(refIDs) > 0 {
		out.ReferenceIDs = paper.CleanReferenceIDs(p.PaperID, refIDs)
	}
	return out
}

// mapCitationResults flattens a citations/references listing, keeping only
// entries that carry an id.
func mapCitationResults(results []CitationResult, cited bool) []paper.Paper {
	papers := make([]paper.Paper, 0, len(results))
	for _, r := range results {
		p := r.CitingPaper
		if cited {
			p = r.CitedPaper
		}
		if p == nil || p.PaperID == "" {
			continue
		}
		papers = append(papers, MapS2ToPaper(*p))
	}
	return papers
}
