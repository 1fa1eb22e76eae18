/*
Package query coordinates cancellation between successive queries.

A Coordinator hands out Tokens. Exactly one token is live at a time:
BeginQuery supersedes the previous token (cancelling its context) before
returning the new one, and Complete retires a token once its work is
finished.

	Idle --BeginQuery--> Active(t) --BeginQuery--> Active(t') [t superseded]
	                         |
	                      Complete
	                         v
	                       Idle

Background work observes cancellation cooperatively: it passes
Token.Context() to blocking calls and routes publication through
Coordinator.Publish, which runs the publish step only while the token is
still live and holds supersession off until that step returns.
*/
package query
