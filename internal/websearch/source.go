package websearch

import (
	"net/url"
	"path/filepath"
	"strings"
)

// Placeholder is replaced by the escaped search text in source URLs.
const Placeholder = "{q}"

// SearchSource is a configured search endpoint.
type SearchSource struct {
	Title         string `json:"title" yaml:"title" toml:"title"`
	ActionKeyword string `json:"action_keyword" yaml:"action_keyword" toml:"action_keyword"`
	URL           string `json:"url" yaml:"url" toml:"url"`
	IconPath      string `json:"icon_path" yaml:"icon_path" toml:"icon_path"`
	Enabled       bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
}

// URLFor returns the source URL with the placeholder replaced by text.
// Everything but RFC 3986 unreserved characters is percent-encoded and
// spaces become %20.
func (s SearchSource) URLFor(text string) string {
	return strings.ReplaceAll(s.URL, Placeholder, escapeDataString(text))
}

// Icon resolves a relative IconPath against dir.
func (s SearchSource) Icon(dir string) string {
	if s.IconPath == "" || dir == "" || filepath.IsAbs(s.IconPath) {
		return s.IconPath
	}
	return filepath.Join(dir, s.IconPath)
}

func escapeDataString(s string) string {
	// QueryEscape already escapes a literal '+', so every '+' left is a space.
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
