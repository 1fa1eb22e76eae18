// Package websearch turns "<keyword> <text>" queries into web search
// results.
//
// A query selects a SearchSource by action keyword. The Aggregator
// answers synchronously with an immediate entry, then races a suggestion
// fetch against a short timeout. Suggestions that arrive in time are part
// of the returned ResultList. Later ones are appended to that same list
// and announced through OnResultsUpdated, but only while the query is
// still the live one.
//
// Plugin wraps the Aggregator with persisted Settings.
package websearch
