package query

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/websearch/internal/shared/id"
)

var (
	// ErrNotLive is returned by Token.Err once the token has been
	// superseded, completed or its coordinator closed.
	ErrNotLive = errors.New("query: token is no longer live")

	errSuperseded = errors.New("query: superseded by a newer query")
	errCompleted  = errors.New("query: completed")
	errClosed     = errors.New("query: coordinator closed")
)

// Token identifies one query generation.
type Token struct {
	id         id.QueryID
	generation uint64
	issued     time.Time
	ctx        context.Context
	cancel     context.CancelCauseFunc
}

// ID returns the token's query ID.
func (t *Token) ID() id.QueryID { return t.id }

// Generation returns the token's position in issue order, starting at 1.
func (t *Token) Generation() uint64 { return t.generation }

// Issued returns when the token was created.
func (t *Token) Issued() time.Time { return t.issued }

// Context is cancelled when the token stops being live.
func (t *Token) Context() context.Context { return t.ctx }

// Done is shorthand for Context().Done().
func (t *Token) Done() <-chan struct{} { return t.ctx.Done() }

// Err returns ErrNotLive once the token is no longer live.
func (t *Token) Err() error {
	if t.ctx.Err() != nil {
		return ErrNotLive
	}
	return nil
}

// Reason explains why the token stopped being live, or nil if it still is.
func (t *Token) Reason() error { return context.Cause(t.ctx) }

// Coordinator issues tokens and tracks which one is live.
type Coordinator struct {
	parent context.Context

	mu         sync.Mutex
	current    *Token
	generation uint64
	closed     bool
}

// NewCoordinator creates a coordinator. Token contexts derive from parent,
// so cancelling parent cancels every outstanding token.
func NewCoordinator(parent context.Context) *Coordinator {
	if parent == nil {
		parent = context.Background()
	}
	return &Coordinator{parent: parent}
}

// BeginQuery invalidates the live token, if any, and returns a new live one.
// It waits for an in-progress Publish on the previous token to finish.
func (c *Coordinator) BeginQuery() *Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.current.cancel(errSuperseded)
		c.current = nil
	}

	c.generation++
	ctx, cancel := context.WithCancelCause(c.parent)
	tok := &Token{
		id:         id.NewQueryID(),
		generation: c.generation,
		issued:     time.Now(),
		ctx:        ctx,
		cancel:     cancel,
	}

	if c.closed {
		cancel(errClosed)
		return tok
	}
	c.current = tok
	return tok
}

// IsLive reports whether t is the most recently issued token and has been
// neither completed nor cancelled.
func (c *Coordinator) IsLive(t *Token) bool {
	if t == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isLiveLocked(t)
}

func (c *Coordinator) isLiveLocked(t *Token) bool {
	return t == c.current && t.ctx.Err() == nil
}

// Publish runs fn if t is live and reports whether it ran. No BeginQuery can
// supersede t while fn executes, so fn must not call back into c.
func (c *Coordinator) Publish(t *Token, fn func()) bool {
	if t == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isLiveLocked(t) {
		return false
	}
	fn()
	return true
}

// Complete retires t. Completing a token that is not live is a no-op.
func (c *Coordinator) Complete(t *Token) {
	if t == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == t {
		t.cancel(errCompleted)
		c.current = nil
	}
}

// Current returns the live token, or nil when idle.
func (c *Coordinator) Current() *Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && c.current.ctx.Err() != nil {
		return nil
	}
	return c.current
}

// Close cancels the live token. Tokens issued afterwards are born cancelled.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.current != nil {
		c.current.cancel(errClosed)
		c.current = nil
	}
}
