package websearch

import (
	"strings"
	"unicode"
)

// Query is a parsed user query.
type Query struct {
	RawQuery      string `json:"raw_query"`
	ActionKeyword string `json:"action_keyword"`
	Search        string `json:"search"`
}

// ParseQuery splits raw into its action keyword (the first term) and the
// search text that follows it.
func ParseQuery(raw string) Query {
	trimmed := strings.TrimLeftFunc(raw, unicode.IsSpace)
	q := Query{RawQuery: raw}

	i := strings.IndexFunc(trimmed, unicode.IsSpace)
	if i < 0 {
		q.ActionKeyword = trimmed
		return q
	}
	q.ActionKeyword = trimmed[:i]
	q.Search = strings.TrimSpace(trimmed[i:])
	return q
}
