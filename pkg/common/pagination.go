package common

import (
	"net/http"
	"strconv"
)

// PageParams carries token-based pagination parameters. The store hands
// back an opaque continuation token; offsets and page numbers do not
// exist in this API.
type PageParams struct {
	PageSize  int
	NextToken *string
}

// MaxPageSize caps a single page regardless of what the caller asks for.
const MaxPageSize = 100

// ExtractPageParams reads limit and nextToken from the query string.
// A missing or unparsable limit yields zero, which callers treat as
// "use the service default".
func ExtractPageParams(r *http.Request) PageParams {
	params := PageParams{}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			if n > MaxPageSize {
				n = MaxPageSize
			}
			params.PageSize = n
		}
	}

	if token := r.URL.Query().Get("nextToken"); token != "" {
		params.NextToken = &token
	}

	return params
}

// PaginatedResult wraps a page of items with its continuation token.
type PaginatedResult struct {
	Items     interface{} `json:"items"`
	Count     int         `json:"count"`
	NextToken *string     `json:"nextToken,omitempty"`
	HasMore   bool        `json:"hasMore"`
}

// NewPaginatedResult creates a new paginated result
func NewPaginatedResult(items interface{}, count int, nextToken *string) *PaginatedResult {
	return &PaginatedResult{
		Items:     items,
		Count:     count,
		NextToken: nextToken,
		HasMore:   nextToken != nil,
	}
}
