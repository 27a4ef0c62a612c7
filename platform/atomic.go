package platform

import (
	"sync/atomic"
)

// Counter32 is a 32-bit counter safe for concurrent use.
type Counter32 struct {
	v int32
}

// Increment adds one and returns the new value.
func (c *Counter32) Increment() int32 { return atomic.AddInt32(&c.v, 1) }

// Decrement subtracts one and returns the new value.
func (c *Counter32) Decrement() int32 { return atomic.AddInt32(&c.v, -1) }

// Load returns the current value.
func (c *Counter32) Load() int32 { return atomic.LoadInt32(&c.v) }

// CompareExchange stores replacement if the current value is desired. It
// returns the value seen before the operation, so the exchange happened iff
// the result equals desired.
func (c *Counter32) CompareExchange(replacement, desired int32) int32 {
	for {
		old := atomic.LoadInt32(&c.v)
		if old != desired {
			return old
		}
		if atomic.CompareAndSwapInt32(&c.v, old, replacement) {
			return old
		}
	}
}

// Counter64 is a 64-bit counter safe for concurrent use.
type Counter64 struct {
	v int64
}

// Add adds delta and returns the new value.
func (c *Counter64) Add(delta int64) int64 { return atomic.AddInt64(&c.v, delta) }

// Increment adds one and returns the new value.
func (c *Counter64) Increment() int64 { return atomic.AddInt64(&c.v, 1) }

// Load returns the current value.
func (c *Counter64) Load() int64 { return atomic.LoadInt64(&c.v) }

// CompareExchange stores replacement if the current value is desired. It
// returns the value seen before the operation.
func (c *Counter64) CompareExchange(replacement, desired int64) int64 {
	for {
		old := atomic.LoadInt64(&c.v)
		if old != desired {
			return old
		}
		if atomic.CompareAndSwapInt64(&c.v, old, replacement) {
			return old
		}
	}
}
