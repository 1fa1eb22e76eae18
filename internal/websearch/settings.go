package websearch

import "slices"

// Settings is the persisted plugin configuration.
type Settings struct {
	SearchSources      []SearchSource `json:"search_sources" yaml:"search_sources" toml:"search_sources"`
	EnableSuggestion   bool           `json:"enable_suggestion" yaml:"enable_suggestion" toml:"enable_suggestion"`
	SelectedSuggestion string         `json:"selected_suggestion" yaml:"selected_suggestion" toml:"selected_suggestion"`
	// BrowserPath is the executable used to open results. Empty means the
	// OS default handler.
	BrowserPath string `json:"browser_path" yaml:"browser_path" toml:"browser_path"`
}

// DefaultSettings returns the built-in sources with Google suggestions on.
func DefaultSettings() Settings {
	return Settings{
		SearchSources: []SearchSource{
			{Title: "Google", ActionKeyword: "g", IconPath: "google.png", URL: "https://www.google.com/search?q={q}", Enabled: true},
			{Title: "Wikipedia", ActionKeyword: "wiki", IconPath: "wiki.png", URL: "https://en.wikipedia.org/wiki/{q}", Enabled: true},
			{Title: "FindIcon", ActionKeyword: "findicon", IconPath: "pictures.png", URL: "http://findicons.com/search/{q}", Enabled: true},
			{Title: "Facebook", ActionKeyword: "facebook", IconPath: "facebook.png", URL: "https://www.facebook.com/search/?q={q}", Enabled: true},
			{Title: "Twitter", ActionKeyword: "twitter", IconPath: "twitter.png", URL: "https://twitter.com/search?q={q}", Enabled: true},
			{Title: "Google Maps", ActionKeyword: "maps", IconPath: "google_maps.png", URL: "https://maps.google.com/maps?q={q}", Enabled: true},
			{Title: "Google Translate", ActionKeyword: "translate", IconPath: "google_translate.png", URL: "https://translate.google.com/#auto|en|{q}", Enabled: true},
			{Title: "Duckduckgo", ActionKeyword: "duckduckgo", IconPath: "duckduckgo.png", URL: "https://duckduckgo.com/?q={q}", Enabled: true},
			{Title: "Github", ActionKeyword: "github", IconPath: "github.png", URL: "https://github.com/search?q={q}", Enabled: true},
			{Title: "Github Gist", ActionKeyword: "gist", IconPath: "gist.png", URL: "https://gist.github.com/search?q={q}", Enabled: true},
			{Title: "Gmail", ActionKeyword: "gmail", IconPath: "gmail.png", URL: "https://mail.google.com/mail/ca/u/0/#apps/{q}", Enabled: true},
			{Title: "Google Drive", ActionKeyword: "drive", IconPath: "google_drive.png", URL: "https://drive.google.com/?hl=en&tab=bo#search/{q}", Enabled: true},
			{Title: "Wolframalpha", ActionKeyword: "wolframalpha", IconPath: "wolframalpha.png", URL: "https://www.wolframalpha.com/input/?i={q}", Enabled: true},
			{Title: "Stackoverflow", ActionKeyword: "stackoverflow", IconPath: "stackoverflow.png", URL: "https://stackoverflow.com/search?q={q}", Enabled: true},
			{Title: "IMDB", ActionKeyword: "imdb", IconPath: "imdb.png", URL: "https://www.imdb.com/find?q={q}", Enabled: true},
			{Title: "Youtube", ActionKeyword: "youtube", IconPath: "youtube.png", URL: "https://www.youtube.com/results?search_query={q}", Enabled: true},
			{Title: "Bing", ActionKeyword: "bing", IconPath: "bing.png", URL: "https://www.bing.com/search?q={q}", Enabled: true},
			{Title: "Yahoo", ActionKeyword: "yahoo", IconPath: "yahoo.png", URL: "https://search.yahoo.com/search?p={q}", Enabled: true},
			{Title: "Baidu", ActionKeyword: "bd", IconPath: "baidu.png", URL: "https://www.baidu.com/#ie=UTF-8&wd={q}", Enabled: true},
		},
		EnableSuggestion:   true,
		SelectedSuggestion: "google",
	}
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	out := s
	out.SearchSources = append([]SearchSource(nil), s.SearchSources...)
	return out
}

// Equal reports whether s and o hold the same settings.
func (s Settings) Equal(o Settings) bool {
	return s.EnableSuggestion == o.EnableSuggestion &&
		s.SelectedSuggestion == o.SelectedSuggestion &&
		s.BrowserPath == o.BrowserPath &&
		slices.Equal(s.SearchSources, o.SearchSources)
}

// Source returns a copy of the first enabled source with keyword, or nil.
func (s Settings) Source(keyword string) *SearchSource {
	for _, src := range s.SearchSources {
		if src.Enabled && src.ActionKeyword == keyword {
			found := src
			return &found
		}
	}
	return nil
}
