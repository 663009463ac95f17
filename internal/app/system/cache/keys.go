package cache

import (
	"fmt"
	"strings"
)

// Key naming scheme. Every read-heavy operation has a deterministic,
// collision-free key built from the operation name and all of its
// parameters:
//
//	user:<idOrAlias>          single profile, keyed as the caller asked
//	top-creators:p<page>      ranked page
//	search:<query>:p<page>    search result page (query lowercased)

// UserKey keys a profile by whichever identifier the caller used.
func UserKey(idOrAlias string) string {
	return "user:" + idOrAlias
}

// TopCreatorsKey keys one page of the top-creators ranking.
func TopCreatorsKey(page int) string {
	return fmt.Sprintf("top-creators:p%d", page)
}

// SearchKey keys one page of search results for a query.
func SearchKey(query string, page int) string {
	return fmt.Sprintf("search:%s:p%d", strings.ToLower(strings.TrimSpace(query)), page)
}
