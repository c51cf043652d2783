// Package guard wraps long-running operations with a deadline and a
// cooperative cancellation hook.
package guard

import (
	"sync"
	"time"
)

// Verdict classifies how a guarded operation concluded.
type Verdict int

const (
	// VerdictCompleted means the operation settled before the deadline.
	VerdictCompleted Verdict = iota

	// VerdictKilled means the deadline fired first. The operation itself is
	// not stopped; cancellation is the onTimeout callback's responsibility.
	VerdictKilled

	// VerdictClosed means the guard was closed before the operation settled.
	VerdictClosed
)

// String returns the verdict name for logs.
func (v Verdict) String() string {
	switch v {
	case VerdictCompleted:
		return "completed"
	case VerdictKilled:
		return "killed"
	case VerdictClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Guard bounds operations with deadlines and supports early teardown
// independent of any timer, e.g. on process shutdown.
type Guard struct {
	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// New creates an open Guard.
func New() *Guard {
	return &Guard{done: make(chan struct{})}
}

// Close forces every in-flight Run to settle with VerdictClosed. Idempotent.
func (g *Guard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.closed {
		g.closed = true
		close(g.done)
	}
}

// Run executes op and races it against deadline. If op settles first its
// result is returned untouched with VerdictCompleted. If the timer fires
// first, onTimeout is scheduled (not awaited) and Run returns the zero value
// with VerdictKilled; op keeps running until it observes cancellation on its
// own. Closing the guard settles Run early with VerdictClosed.
func Run[T any](g *Guard, op func() T, deadline time.Duration, onTimeout func()) (T, Verdict) {
	results := make(chan T, 1)

	go func() {
		results <- op()
	}()

	timer := time.NewTimer(deadline)
	defer timer.Stop()

	var zero T

	select {
	case result := <-results:
		return result, VerdictCompleted
	case <-timer.C:
		if onTimeout != nil {
			go onTimeout()
		}

		return zero, VerdictKilled
	case <-g.done:
		return zero, VerdictClosed
	}
}
