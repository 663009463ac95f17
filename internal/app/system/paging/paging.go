// Package paging provides the fixed page-size offset pagination used by
// the ranked aggregation pipelines.
//
// Pages are zero-based and the size is a contract constant: page p
// skips exactly p*PageSize documents. The ranking pipelines are
// re-evaluated per call (postCount is derived), so there is no cursor
// state to carry between pages.
package paging

import (
	"net/http"
	"strconv"
)

// PageSize is the number of rows in every ranked or searched list page.
const PageSize = 12

// Skip returns the number of documents to skip for a zero-based page.
func Skip(page int) int64 {
	if page < 0 {
		return 0
	}
	return int64(page) * PageSize
}

// Limit returns PageSize as int64 for Mongo $limit stages.
func Limit() int64 { return PageSize }

// ParsePage extracts the zero-based "page" query parameter.
// Returns 0 if not present or invalid.
func ParsePage(r *http.Request) int {
	s := r.URL.Query().Get("page")
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
