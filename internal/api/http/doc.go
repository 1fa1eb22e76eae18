// Package http exposes the web search plugin over a JSON API.
//
// Routes:
//   - GET  /health                               service status
//   - GET  /sources                              configured search sources
//   - GET  /query?q=<keyword> <text>             run a query
//   - GET  /query/:id                            current results of a query
//   - POST /query/:id/results/:index/invoke      open a result
//   - GET  /settings, PUT /settings              read and replace settings
//
// Result lists are kept for a short while by query ID so clients can
// invoke entries and pick up suggestions appended after the first answer.
package http
