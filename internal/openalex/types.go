// Package openalex provides a client for the OpenAlex works API.
package openalex

// Work is an OpenAlex work as returned with the select parameter below.
type Work struct {
	ID                    string           `json:"id"`
	Title                 string           `json:"title"`
	PublicationYear       int              `json:"publication_year"`
	CitedByCount          int              `json:"cited_by_count"`
	ReferencedWorks       []string         `json:"referenced_works"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
}

// WorksResponse is a page of the /works listing endpoint.
type WorksResponse struct {
	Meta struct {
		Count   int `json:"count"`
		PerPage int `json:"per_page"`
	} `json:"meta"`
	Results []Work `json:"results"`
}
