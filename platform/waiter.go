package platform

import (
	"context"
	"sync"
)

// SingleWaiter is a single-shot event. Any number of goroutines may wait for
// it; Signal releases all of them and every later Wait returns immediately.
type SingleWaiter struct {
	once sync.Once
	ch   chan struct{}
}

// NewSingleWaiter creates an unsignaled waiter.
func NewSingleWaiter() *SingleWaiter {
	return &SingleWaiter{ch: make(chan struct{})}
}

// Signal marks the event. Repeated calls are no-ops.
func (w *SingleWaiter) Signal() {
	w.once.Do(func() { close(w.ch) })
}

// Wait blocks until the event is signaled or ctx is done, in which case it
// returns ctx.Err().
func (w *SingleWaiter) Wait(ctx context.Context) error {
	select {
	case <-w.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Signaled returns true iff Signal has been called.
func (w *SingleWaiter) Signaled() bool {
	select {
	case <-w.ch:
		return true
	default:
		return false
	}
}
