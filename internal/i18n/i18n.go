// Package i18n looks up display strings from embedded YAML catalogs.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

// DefaultLanguage is used when no language is requested.
const DefaultLanguage = "en"

// Translation keys.
const (
	KeySearch            = "wox_plugin_websearch_search"
	KeyPluginName        = "wox_plugin_websearch_plugin_name"
	KeyPluginDescription = "wox_plugin_websearch_plugin_description"
)

var ErrUnknownLanguage = errors.New("i18n: unknown language")

//go:embed languages/*.yaml
var languages embed.FS

// Catalog translates keys for one language, falling back to English.
type Catalog struct {
	language string
	entries  map[string]string
	fallback map[string]string
}

// New loads the catalog for language ("en", "zh-cn", ...).
func New(language string) (*Catalog, error) {
	if language == "" {
		language = DefaultLanguage
	}
	language = strings.ToLower(language)

	fallback, err := load(DefaultLanguage)
	if err != nil {
		return nil, err
	}
	if language == DefaultLanguage {
		return &Catalog{language: language, entries: fallback, fallback: fallback}, nil
	}

	own, err := load(language)
	if err != nil {
		return nil, err
	}
	return &Catalog{language: language, entries: own, fallback: fallback}, nil
}

// Default returns the English catalog.
func Default() *Catalog {
	c, err := New(DefaultLanguage)
	if err != nil {
		panic(err) // embedded catalog is malformed
	}
	return c
}

// Language returns the catalog language.
func (c *Catalog) Language() string { return c.language }

// GetTranslation returns the string for key. Unknown keys translate to
// themselves.
func (c *Catalog) GetTranslation(key string) string {
	if s, ok := c.entries[key]; ok {
		return s
	}
	if s, ok := c.fallback[key]; ok {
		return s
	}
	return key
}

// Languages lists the embedded languages.
func Languages() []string {
	entries, err := fs.Glob(languages, "languages/*.yaml")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(strings.TrimPrefix(e, "languages/"), ".yaml"))
	}
	sort.Strings(out)
	return out
}

func load(language string) (map[string]string, error) {
	data, err := languages.ReadFile("languages/" + language + ".yaml")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, language)
		}
		return nil, err
	}

	var m map[string]string
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("i18n: parse %s catalog: %w", language, err)
	}
	return m, nil
}
