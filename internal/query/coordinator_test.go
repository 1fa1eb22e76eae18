package query

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBeginQuerySupersedesPrevious(t *testing.T) {
	c := NewCoordinator(context.Background())

	first := c.BeginQuery()
	assert.True(t, c.IsLive(first))
	assert.NoError(t, first.Err())

	second := c.BeginQuery()
	assert.False(t, c.IsLive(first))
	assert.True(t, c.IsLive(second))

	select {
	case <-first.Done():
	default:
		t.Fatal("superseded token context should be cancelled")
	}
	assert.ErrorIs(t, first.Err(), ErrNotLive)
	assert.ErrorIs(t, first.Reason(), errSuperseded)
	assert.Nil(t, second.Reason())

	assert.Equal(t, uint64(1), first.Generation())
	assert.Equal(t, uint64(2), second.Generation())
	assert.NotEqual(t, first.ID(), second.ID())
}

func TestCompleteRetiresToken(t *testing.T) {
	c := NewCoordinator(context.Background())

	tok := c.BeginQuery()
	assert.Same(t, tok, c.Current())

	c.Complete(tok)
	assert.False(t, c.IsLive(tok))
	assert.Nil(t, c.Current())
	assert.ErrorIs(t, tok.Reason(), errCompleted)

	// Completing a stale token must not disturb the live one.
	next := c.BeginQuery()
	c.Complete(tok)
	assert.True(t, c.IsLive(next))
}

func TestIsLiveNil(t *testing.T) {
	c := NewCoordinator(context.Background())
	assert.False(t, c.IsLive(nil))
	assert.False(t, c.Publish(nil, func() {}))
	c.Complete(nil)
}

func TestPublishOnlyWhileLive(t *testing.T) {
	c := NewCoordinator(context.Background())

	stale := c.BeginQuery()
	live := c.BeginQuery()

	ran := false
	assert.False(t, c.Publish(stale, func() { ran = true }))
	assert.False(t, ran)

	assert.True(t, c.Publish(live, func() { ran = true }))
	assert.True(t, ran)
}

func TestPublishBlocksSupersession(t *testing.T) {
	c := NewCoordinator(context.Background())
	tok := c.BeginQuery()

	entered := make(chan struct{})
	release := make(chan struct{})
	published := make(chan bool)

	go func() {
		published <- c.Publish(tok, func() {
			close(entered)
			<-release
		})
	}()

	<-entered
	begun := make(chan *Token)
	go func() { begun <- c.BeginQuery() }()

	select {
	case <-begun:
		t.Fatal("BeginQuery returned while Publish was running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	assert.True(t, <-published)
	next := <-begun
	assert.True(t, c.IsLive(next))
	assert.False(t, c.IsLive(tok))
}

func TestParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	c := NewCoordinator(parent)

	tok := c.BeginQuery()
	cancel()

	<-tok.Done()
	assert.False(t, c.IsLive(tok))
	assert.Nil(t, c.Current())
}

func TestClose(t *testing.T) {
	c := NewCoordinator(context.Background())
	tok := c.BeginQuery()

	c.Close()
	assert.False(t, c.IsLive(tok))
	assert.ErrorIs(t, tok.Reason(), errClosed)

	after := c.BeginQuery()
	assert.False(t, c.IsLive(after))
	assert.ErrorIs(t, after.Err(), ErrNotLive)
}

func TestRapidQueriesLeaveOneLive(t *testing.T) {
	c := NewCoordinator(context.Background())

	const workers, perWorker = 8, 200
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		tokens []*Token
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				tok := c.BeginQuery()
				mu.Lock()
				tokens = append(tokens, tok)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, tokens, workers*perWorker)

	var live int32
	for _, tok := range tokens {
		if c.IsLive(tok) {
			atomic.AddInt32(&live, 1)
			assert.Equal(t, uint64(workers*perWorker), tok.Generation())
		}
	}
	assert.Equal(t, int32(1), live)
}
