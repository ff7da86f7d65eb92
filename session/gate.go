package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrGateResolved = errors.New("gate is already resolved")
	ErrGateTimeout  = errors.New("gate timed out awaiting the application decision")
)

// Gate is a one-shot handover between an inbound protocol request and the
// application decision resolving it. Resolve unblocks every waiter exactly
// once; Await always takes a timeout, a session parked on a decision forever
// is a resource leak.
type Gate struct {
	mux      sync.Mutex
	done     chan struct{}
	resolved bool
}

// NewGate creates an unresolved gate.
func NewGate() *Gate {
	return &Gate{done: make(chan struct{})}
}

// Resolve marks the decision as taken. The second and every following call
// reports ErrGateResolved.
func (g *Gate) Resolve() error {
	g.mux.Lock()
	defer g.mux.Unlock()
	if g.resolved {
		return ErrGateResolved
	}
	g.resolved = true
	close(g.done)
	return nil
}

// Resolved reports whether the decision was taken.
func (g *Gate) Resolved() bool {
	g.mux.Lock()
	defer g.mux.Unlock()
	return g.resolved
}

// Await blocks until the gate resolves, the timeout passes or ctx is
// cancelled.
func (g *Gate) Await(ctx context.Context, timeout time.Duration) error {
	select {
	case <-g.done:
		return nil
	case <-time.After(timeout):
		return ErrGateTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
