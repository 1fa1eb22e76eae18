// Command websearch serves and queries the web search plugin.
//
// Usage:
//
//	websearch serve [--port 8010] [--settings path]
//	websearch query g golang generics [--wait 1s]
//	websearch sources
//
// Configuration is read from the environment (and an optional .env
// file); flags override it.
package main
