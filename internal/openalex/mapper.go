package openalex

import (
	"sort"
	"strings"

	"github.com/matsen/researchgraph/internal/paper"
)

// idPrefixes are stripped from OpenAlex ids so that W-numbers are used as
// paper ids everywhere.
var idPrefixes = []string{
	"https://openalex.org/",
	"http://openalex.org/",
	"https://api.openalex.org/works/",
	"openalex.org/",
}

// ShortID strips the URL prefix from an OpenAlex id.
func ShortID(id string) string {
	id = strings.TrimSpace(id)
	for _, prefix := range idPrefixes {
		if strings.HasPrefix(id, prefix) {
			return id[len(prefix):]
		}
	}
	return id
}

// lookupID turns a user-supplied identifier into the form /works/{id}
// accepts: W-numbers as-is, bare DOIs with a doi: prefix.
func lookupID(id string) string {
	id = ShortID(id)
	lower := strings.ToLower(id)
	switch {
	case strings.HasPrefix(lower, "doi:"):
		return "doi:" + id[len("doi:"):]
	case strings.HasPrefix(lower, "https://doi.org/"):
		return "doi:" + id[len("https://doi.org/"):]
	case strings.HasPrefix(id, "10."):
		return "doi:" + id
	default:
		return id
	}
}

// InvertAbstract rebuilds abstract text from an inverted index
// ({"word": [positions...]}).
func InvertAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}

	type placed struct {
		pos  int
		word string
	}
	words := make([]placed, 0, len(index))
	for word, positions := range index {
		for _, pos := range positions {
			words = append(words, placed{pos: pos, word: word})
		}
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].pos != words[j].pos {
			return words[i].pos < words[j].pos
		}
		return words[i].word < words[j].word
	})

	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.word
	}
	return strings.Join(parts, " ")
}

// MapWorkToPaper converts a Work to a Paper.
func MapWorkToPaper(w Work) paper.Paper {
	id := ShortID(w.ID)

	refs := make([]string, 0, len(w.ReferencedWorks))
	for _, r := range w.ReferencedWorks {
		refs = append(refs, ShortID(r))
	}

	p := paper.Paper{
		ID:            id,
		Title:         w.Title,
		Year:          w.PublicationYear,
		Abstract:      InvertAbstract(w.AbstractInvertedIndex),
		CitationCount: w.CitedByCount,
	}
	if len(refs) > 0 {
		p.ReferenceIDs = paper.CleanReferenceIDs(id, refs)
	}
	return p
}

func mapWorks(works []Work) []paper.Paper {
	papers := make([]paper.Paper, 0, len(works))
	for _, w := range works {
		if w.ID == "" {
			continue
		}
		papers = append(papers, MapWorkToPaper(w))
	}
	return papers
}
