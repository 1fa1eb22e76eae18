// Package server wires the web search plugin into an HTTP server.
//
// Components:
//   - Settings store (storage.Store) with metrics observer
//   - Suggestion providers (google, baidu) behind circuit breakers
//   - JSON API (api/http) and update stream (api/ws)
//   - Prometheus metrics at /metrics
//
// Example Usage:
//
//	srv, err := server.NewServer(config.LoadOrDefault())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer srv.Close()
//	srv.Run(ctx)
package server
