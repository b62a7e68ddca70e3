package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Cyclone1070/commander/internal/provider"
	"github.com/Cyclone1070/commander/internal/workflow/router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRunner struct {
	runFunc func(ctx context.Context, objective string, history []provider.Message) router.Result
}

func (m *mockRunner) Run(ctx context.Context, objective string, history []provider.Message) router.Result {
	return m.runFunc(ctx, objective, history)
}

func echoRunner() *mockRunner {
	return &mockRunner{runFunc: func(ctx context.Context, objective string, history []provider.Message) router.Result {
		return router.Result{Answer: "done: " + objective, Outcome: router.OutcomeFinal}
	}}
}

func TestSubmit_RecordsHistory(t *testing.T) {
	var seen [][]provider.Message
	runner := &mockRunner{runFunc: func(ctx context.Context, objective string, history []provider.Message) router.Result {
		seen = append(seen, history)
		return router.Result{Answer: "ok " + objective, Outcome: router.OutcomeFinal}
	}}
	p := NewPool(runner, 2, 20, nil)
	defer p.Close()

	res, err := p.Submit(context.Background(), "s1", "first")
	require.NoError(t, err)
	assert.Equal(t, "ok first", res.Answer)

	_, err = p.Submit(context.Background(), "s1", "second")
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Empty(t, seen[0])
	assert.Equal(t, []provider.Message{
		{Role: provider.RoleUser, Content: "first"},
		{Role: provider.RoleAssistant, Content: "ok first"},
	}, seen[1])
	assert.Len(t, p.History("s1"), 4)
	assert.Nil(t, p.History("unknown"))
}

func TestSubmit_TrimsHistory(t *testing.T) {
	p := NewPool(echoRunner(), 1, 4, nil)
	defer p.Close()

	for i := range 5 {
		_, err := p.Submit(context.Background(), "s", fmt.Sprintf("task %d", i))
		require.NoError(t, err)
	}

	h := p.History("s")
	require.Len(t, h, 4)
	assert.Equal(t, "task 3", h[0].Content)
	assert.Equal(t, "done: task 4", h[3].Content)
}

func TestSubmit_SentinelRecordedAsAssistantTurn(t *testing.T) {
	runner := &mockRunner{runFunc: func(ctx context.Context, objective string, history []provider.Message) router.Result {
		return router.Result{Answer: router.SentinelCircuitOpen, Outcome: router.OutcomeCircuitOpen}
	}}
	p := NewPool(runner, 1, 20, nil)
	defer p.Close()

	res, err := p.Submit(context.Background(), "s", "x")
	require.NoError(t, err)
	assert.Equal(t, router.OutcomeCircuitOpen, res.Outcome)
	assert.Equal(t, router.SentinelCircuitOpen, p.History("s")[1].Content)
}

func TestHistory_ReturnsCopy(t *testing.T) {
	p := NewPool(echoRunner(), 1, 20, nil)
	defer p.Close()
	_, err := p.Submit(context.Background(), "s", "x")
	require.NoError(t, err)

	h := p.History("s")
	h[0].Content = "mutated"
	assert.Equal(t, "x", p.History("s")[0].Content)
}

func TestReset(t *testing.T) {
	p := NewPool(echoRunner(), 1, 20, nil)
	defer p.Close()
	_, err := p.Submit(context.Background(), "s", "x")
	require.NoError(t, err)

	p.Reset("s")
	assert.Empty(t, p.History("s"))
}

func TestSubmit_BoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	runner := &mockRunner{runFunc: func(ctx context.Context, objective string, history []provider.Message) router.Result {
		n := running.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		running.Add(-1)
		return router.Result{Answer: "ok", Outcome: router.OutcomeFinal}
	}}
	p := NewPool(runner, 2, 20, nil)
	defer p.Close()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Submit(context.Background(), fmt.Sprintf("s%d", i), "x")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestSubmit_SerialisesOneSession(t *testing.T) {
	var running, peak atomic.Int32
	runner := &mockRunner{runFunc: func(ctx context.Context, objective string, history []provider.Message) router.Result {
		if n := running.Add(1); n > peak.Load() {
			peak.Store(n)
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return router.Result{Answer: "ok", Outcome: router.OutcomeFinal}
	}}
	p := NewPool(runner, 4, 100, nil)
	defer p.Close()

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.Submit(context.Background(), "same", "x")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak.Load())
	assert.Len(t, p.History("same"), 8)
}

func TestSubmit_ContextCancelledWhileWaiting(t *testing.T) {
	release := make(chan struct{})
	runner := &mockRunner{runFunc: func(ctx context.Context, objective string, history []provider.Message) router.Result {
		<-release
		return router.Result{Answer: "ok", Outcome: router.OutcomeFinal}
	}}
	p := NewPool(runner, 1, 20, nil)
	defer p.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Submit(context.Background(), "a", "hold")
	}()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.Submit(ctx, "b", "blocked")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	<-done
}

func TestClose_CancelsInFlight(t *testing.T) {
	started := make(chan struct{})
	runner := &mockRunner{runFunc: func(ctx context.Context, objective string, history []provider.Message) router.Result {
		close(started)
		<-ctx.Done()
		return router.Result{Answer: "cancelled", Outcome: router.OutcomeBackendFailure}
	}}
	p := NewPool(runner, 1, 20, nil)

	result := make(chan router.Result, 1)
	go func() {
		res, _ := p.Submit(context.Background(), "s", "long")
		result <- res
	}()
	<-started

	p.Close()
	p.Close()

	select {
	case res := <-result:
		assert.Equal(t, router.OutcomeBackendFailure, res.Outcome)
	case <-time.After(time.Second):
		t.Fatal("in-flight task was not cancelled")
	}

	_, err := p.Submit(context.Background(), "s", "after")
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestSubmit_EvictsLeastRecentlyUsedIdleSession(t *testing.T) {
	p := NewPool(echoRunner(), 1, 20, nil, WithCapacity(2))
	defer p.Close()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "a", "c"} {
		_, err := p.Submit(ctx, id, "x")
		require.NoError(t, err)
	}

	assert.Empty(t, p.History("b"))
	assert.Len(t, p.History("a"), 4)
	assert.Len(t, p.History("c"), 2)
}

func TestSubmit_OneShotSessionsStayBounded(t *testing.T) {
	p := NewPool(echoRunner(), 2, 20, nil, WithCapacity(3))
	defer p.Close()

	for range 10 {
		_, err := p.Submit(context.Background(), NewSessionID(), "x")
		require.NoError(t, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Len(t, p.sessions, 3)
}

func TestSubmit_ActiveSessionNotEvicted(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	runner := &mockRunner{runFunc: func(ctx context.Context, objective string, history []provider.Message) router.Result {
		if objective == "hold" {
			close(started)
			<-release
		}
		return router.Result{Answer: "ok", Outcome: router.OutcomeFinal}
	}}
	p := NewPool(runner, 2, 20, nil, WithCapacity(1))
	defer p.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Submit(context.Background(), "busy", "hold")
	}()
	<-started

	_, err := p.Submit(context.Background(), "other", "x")
	require.NoError(t, err)

	close(release)
	<-done
	assert.Len(t, p.History("busy"), 2)
}

func TestNewSessionID(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestNewPool_Defaults(t *testing.T) {
	assert.Panics(t, func() { NewPool(nil, 1, 1, nil) })

	p := NewPool(echoRunner(), 0, 0, nil)
	defer p.Close()
	assert.Equal(t, DefaultHistoryLimit, p.historyLimit)
}
