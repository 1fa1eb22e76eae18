// Package ws streams query results over WebSocket.
//
// Every late suggestion update is broadcast to all connected clients:
//
//	{"type": "results_updated", "query_id": "...", "query": {...}, "results": [...]}
//
// Clients may also run queries over the socket:
//
//	-> {"type": "query", "q": "g weather"}
//	<- {"type": "results", "query_id": "...", "query": {...}, "results": [...]}
//	-> {"type": "ping"}
//	<- {"type": "pong"}
package ws
