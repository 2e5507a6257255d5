// Package clock abstracts time so that build and query timings can be
// asserted in tests.
package clock

import (
	"sync"
	"time"
)

// Clock provides an abstraction for time operations.
// Use RealClock in production and MockClock in tests.
type Clock interface {
	Now() time.Time
}

// Since returns the time elapsed on c since t.
func Since(c Clock, t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// RealClock implements Clock using actual system time.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// MockClock is a controllable, thread-safe Clock. Use NewMockClock to
// create instances.
type MockClock struct {
	currentTime time.Time
	step        time.Duration
	mu          sync.Mutex
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

// Now returns the mock clock's current time, then advances it by the
// configured step.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.currentTime
	m.currentTime = m.currentTime.Add(m.step)
	return now
}

// SetStep makes every Now call advance the clock by d afterwards, which
// gives timed sections a fixed, non-zero duration.
func (m *MockClock) SetStep(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.step = d
}

func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = t
}

// Advance moves the mock clock by the specified duration.
// Use positive durations to move forward, negative to move backward.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}
