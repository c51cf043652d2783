// Package gate provides a per-key primitive that orders dependent waiters
// behind in-flight operations without a persistent queue.
package gate

import (
	"context"
	"sync"
)

// node is a single-resolution link in a per-key chain. Its done channel is
// closed exactly once, when the operation it carries has settled.
type node struct {
	done chan struct{}
}

// Gate chains operations per key so that waiters observe completion in
// arrival order. At most one tail node exists per key at any instant;
// appending replaces the tail and wires the previous tail to gate the new
// operation. An absent key is a valid terminal state, not a failure.
type Gate struct {
	mu    sync.Mutex
	tails map[string]*node
}

// New creates an empty Gate.
func New() *Gate {
	return &Gate{tails: make(map[string]*node)}
}

// Chain appends op as the new tail for key. The operation starts only after
// the previous tail has settled, and the returned channel closes when op
// itself settles. Nodes are created fresh on every call; the chain never
// becomes cyclic.
func (g *Gate) Chain(key string, op func()) <-chan struct{} {
	g.mu.Lock()
	prev := g.tails[key]
	next := &node{done: make(chan struct{})}
	g.tails[key] = next
	g.mu.Unlock()

	go func() {
		defer func() {
			close(next.done)

			g.mu.Lock()
			if g.tails[key] == next {
				delete(g.tails, key)
			}
			g.mu.Unlock()
		}()

		if prev != nil {
			<-prev.done
		}

		op()
	}()

	return next.done
}

// Await blocks until every operation chained for key has settled, including
// operations chained while waiting. An empty chain resolves immediately.
// The only error Await can return is ctx.Err() on cancellation.
func (g *Gate) Await(ctx context.Context, key string) error {
	for {
		g.mu.Lock()
		tail := g.tails[key]
		g.mu.Unlock()

		if tail == nil {
			return nil
		}

		select {
		case <-tail.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Pending reports whether any operation is currently chained for key.
func (g *Gate) Pending(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.tails[key] != nil
}
