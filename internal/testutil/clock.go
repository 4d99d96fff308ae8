package testutil

import (
	"sync"
	"time"
)

// StepClock provides a thread-safe deterministic time source for tests.
//
// Every call to Now advances the clock by one second past base, so each
// generated timestamp is distinct and strictly ordered. Injected as a
// store's time source it makes version timestamps predictable enough to
// assert on exactly.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu   sync.Mutex
	base time.Time
	n    int64
}

// NewStepClock creates a clock stepping from base.
//
// The first call to Now() returns base plus one second.
func NewStepClock(base time.Time) *StepClock {
	return &StepClock{base: base}
}

// Now advances the clock by one second and returns the new time.
//
// Thread-safe: uses mutex to protect the step counter.
// Monotonic: consecutive calls never return the same or an earlier time.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.base.Add(time.Duration(c.n) * time.Second)
}

// Steps returns how many times Now has been called.
//
// Thread-safe: uses mutex to protect the step counter.
func (c *StepClock) Steps() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Reset rewinds the clock to base.
//
// Used for test reuse. After Reset(), the next call to Now() returns
// base plus one second again.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
