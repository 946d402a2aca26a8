package db

import "github.com/kailas-cloud/nobelidx/internal/domain/search/filter"

// Query is the input for a filtered FT.SEARCH.
// An empty filter expression matches every document in the index.
type Query struct {
	IndexName    string
	Filters      filter.Expression
	Offset       int
	Limit        int
	ReturnFields []string
	NoContent    bool   // return keys only
	SortBy       string // ascending; must be a SORTABLE field
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filters      filter.Expression
	VectorField  string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
// Fields is nil for NOCONTENT searches.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
