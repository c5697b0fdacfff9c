package s2

import (
	"regexp"
	"strings"
)

// Common identifier prefixes supported by Semantic Scholar.
var identifierPrefixes = []string{
	"DOI:",
	"ARXIV:",
	"PMID:",
	"PMCID:",
	"CorpusId:",
	"URL:",
	"MAG:",
	"ACL:",
}

var (
	// s2IDPattern matches a 40-character hex string (raw S2 paper ID).
	s2IDPattern = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

	// bareDOIPattern matches an unprefixed DOI such as 10.1038/nature12373.
	bareDOIPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

	// bareArXivPattern matches a new-style arXiv id such as 2106.15928v2.
	bareArXivPattern = regexp.MustCompile(`^\d{4}\.\d{4,5}(v\d+)?$`)
)

// PaperIdentifier represents a parsed paper identifier.
type PaperIdentifier struct {
	Type  string // DOI, ARXIV, PMID, PMCID, CorpusId, URL, MAG, ACL, S2
	Value string
}

// String returns the S2 API format for the identifier.
func (p PaperIdentifier) String() string {
	if p.Type == "S2" {
		return p.Value // Raw S2 ID doesn't need prefix
	}
	return p.Type + ":" + p.Value
}

// ParsePaperID parses a paper identifier string into a PaperIdentifier.
// Supports formats:
//   - DOI:10.1038/nature12373 or a bare 10.1038/nature12373
//   - https://doi.org/10.1038/nature12373
//   - ARXIV:2106.15928 or a bare 2106.15928
//   - PMID:19872477, PMCID:2323736, CorpusId:215416146
//   - URL:https://arxiv.org/abs/2106.15928
//   - Raw 40-character S2 paper ID
//
// Anything else is passed through as an S2 id and left for the API to judge.
func ParsePaperID(id string) PaperIdentifier {
	id = strings.TrimSpace(id)

	for _, prefix := range identifierPrefixes {
		if strings.HasPrefix(strings.ToUpper(id), strings.ToUpper(prefix)) {
			return PaperIdentifier{
				Type:  strings.TrimSuffix(prefix, ":"),
				Value: id[len(prefix):],
			}
		}
	}

	if doi := NormalizeDOI(id); bareDOIPattern.MatchString(doi) {
		return PaperIdentifier{Type: "DOI", Value: doi}
	}

	if bareArXivPattern.MatchString(id) {
		return PaperIdentifier{Type: "ARXIV", Value: id}
	}

	if s2IDPattern.MatchString(id) {
		return PaperIdentifier{Type: "S2", Value: strings.ToLower(id)}
	}

	return PaperIdentifier{Type: "S2", Value: id}
}

// NormalizeDOI normalizes a DOI to a consistent format for comparison.
// It removes common URL prefixes (https://doi.org/, DOI:) and converts to lowercase.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	return strings.ToLower(doi)
}

// pathEscaper escapes the few characters that would end a URL path early.
// Slashes stay literal because S2 expects DOI:10.x/y unescaped.
var pathEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23", " ", "%20")
