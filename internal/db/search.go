package db

import "github.com/kailas-cloud/strindex/internal/domain/query"

// SearchQuery is the input for a filtered listing. An empty Filters matches every
// indexed key. Limit must be positive; the server default of 10 is never relied on.
// SortBy names a SORTABLE field; hits are ordered ascending before the limit applies.
type SearchQuery struct {
	IndexName string
	Filters   query.Expression
	SortBy    string
	Limit     int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hash hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
