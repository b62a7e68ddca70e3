// Package session runs objectives for many chat sessions concurrently while
// keeping each session's own turns strictly ordered.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Cyclone1070/commander/internal/logging"
	"github.com/Cyclone1070/commander/internal/provider"
	"github.com/Cyclone1070/commander/internal/workflow/router"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultSize         = 4
	DefaultHistoryLimit = 20
	DefaultCapacity     = 1024
)

type session struct {
	mu      sync.Mutex
	history []provider.Message

	// Guarded by Pool.mu.
	active   int
	lastUsed uint64
}

// Pool bounds the number of objectives running at once.
type Pool struct {
	runner       objectiveRunner
	sem          *semaphore.Weighted
	historyLimit int
	logger       *slog.Logger

	// ctx is the parent of every task context; Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	sessions map[string]*session
	capacity int
	clock    uint64
}

// Option configures a Pool.
type Option func(*Pool)

// WithCapacity bounds how many sessions are remembered. Past the bound the
// least recently used idle session is forgotten.
func WithCapacity(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.capacity = n
		}
	}
}

// NewPool creates a pool running at most size objectives concurrently and
// keeping the last historyLimit messages per session.
func NewPool(runner objectiveRunner, size int64, historyLimit int, logger *slog.Logger, opts ...Option) *Pool {
	if runner == nil {
		panic("runner is required")
	}
	if size <= 0 {
		size = DefaultSize
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		runner:       runner,
		sem:          semaphore.NewWeighted(size),
		historyLimit: historyLimit,
		logger:       logging.OrDiscard(logger),
		ctx:          ctx,
		cancel:       cancel,
		sessions:     make(map[string]*session),
		capacity:     DefaultCapacity,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Submit runs objective for the session and records the exchange in its
// history. It fails only when no slot could be acquired, either because ctx
// ended or the pool was closed while waiting.
func (p *Pool) Submit(ctx context.Context, sessionID, objective string) (router.Result, error) {
	s, err := p.begin(sessionID)
	if err != nil {
		return router.Result{}, err
	}
	defer p.wg.Done()
	defer p.finish(s)

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(p.ctx, cancel)
	defer stop()

	if err := p.sem.Acquire(taskCtx, 1); err != nil {
		if p.ctx.Err() != nil {
			return router.Result{}, ErrPoolClosed
		}
		return router.Result{}, err
	}
	defer p.sem.Release(1)

	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]provider.Message, len(s.history))
	copy(history, s.history)

	p.logger.Info("objective started", "session", sessionID, "history", len(history))
	res := p.runner.Run(taskCtx, objective, history)
	p.logger.Info("objective finished", "session", sessionID, "outcome", res.Outcome.String())

	s.history = append(s.history,
		provider.Message{Role: provider.RoleUser, Content: objective},
		provider.Message{Role: provider.RoleAssistant, Content: res.Answer},
	)
	if over := len(s.history) - p.historyLimit; over > 0 {
		s.history = append([]provider.Message(nil), s.history[over:]...)
	}
	return res, nil
}

// begin registers an in-flight task and returns the session, creating it on
// first use.
func (p *Pool) begin(id string) (*session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPoolClosed
	}
	p.wg.Add(1)
	s, ok := p.sessions[id]
	if !ok {
		s = &session{}
		p.sessions[id] = s
	}
	s.active++
	p.clock++
	s.lastUsed = p.clock
	if !ok {
		p.evictLocked()
	}
	return s, nil
}

func (p *Pool) finish(s *session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s.active--
	p.clock++
	s.lastUsed = p.clock
}

// evictLocked forgets least recently used idle sessions until the pool is
// within capacity. Sessions with a task in flight are never evicted.
func (p *Pool) evictLocked() {
	for len(p.sessions) > p.capacity {
		var oldestID string
		var oldest *session
		for id, s := range p.sessions {
			if s.active > 0 {
				continue
			}
			if oldest == nil || s.lastUsed < oldest.lastUsed {
				oldestID, oldest = id, s
			}
		}
		if oldest == nil {
			return
		}
		delete(p.sessions, oldestID)
		p.logger.Debug("session evicted", "session", oldestID)
	}
}

// History returns a copy of the session's retained messages.
func (p *Pool) History(id string) []provider.Message {
	p.mu.Lock()
	s, ok := p.sessions[id]
	p.mu.Unlock()
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]provider.Message, len(s.history))
	copy(out, s.history)
	return out
}

// Reset forgets the session. A task already running for it keeps its own
// snapshot and records into the detached session.
func (p *Pool) Reset(id string) {
	p.mu.Lock()
	delete(p.sessions, id)
	p.mu.Unlock()
}

// Close cancels in-flight tasks and waits for them to return.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}
