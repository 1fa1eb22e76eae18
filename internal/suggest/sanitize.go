package suggest

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// clean strips markup from raw suggestions and drops blank entries.
func clean(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		// StrictPolicy escapes entities; undo that so "a & b" survives.
		s = strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
