// Package async runs remote calls in the background and reports their
// lifecycle as pending, succeeded or failed.
package async

import (
	"context"
	"sync"
)

type State int

const (
	Pending State = iota
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Succeeded:
		return "success"
	case Failed:
		return "failure"
	default:
		return "pending"
	}
}

// Op is the result of a call started with Go. It settles exactly once.
type Op[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go starts fn on its own goroutine.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Op[T] {
	op := &Op[T]{done: make(chan struct{})}
	go func() {
		defer close(op.done)
		op.val, op.err = fn(ctx)
	}()
	return op
}

func (o *Op[T]) State() State {
	select {
	case <-o.done:
		if o.err != nil {
			return Failed
		}
		return Succeeded
	default:
		return Pending
	}
}

// Wait blocks until the op settles or ctx is done.
func (o *Op[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-o.done:
		return o.val, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Guard allows one in-flight operation per key. A second TryAcquire for the
// same key fails until Release.
type Guard struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func NewGuard() *Guard { return &Guard{busy: map[string]struct{}{}} }

func (g *Guard) TryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.busy[key]; ok {
		return false
	}
	g.busy[key] = struct{}{}
	return true
}

func (g *Guard) Release(key string) {
	g.mu.Lock()
	delete(g.busy, key)
	g.mu.Unlock()
}

// InFlight reports whether key is currently held.
func (g *Guard) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.busy[key]
	return ok
}
