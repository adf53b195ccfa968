package mock

import (
	"sync"
	"time"
)

// Time is a settable clock. It stands still until SetCurrentTime moves it.
type Time struct {
	mu      sync.RWMutex
	current time.Time
}

// NewTime returns a clock reading the real current time.
func NewTime() *Time {
	return &Time{current: time.Now().UTC()}
}

// SetCurrentTime moves the clock.
func (t *Time) SetCurrentTime(currentTime time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = currentTime.UTC()
}

// Now implements adapter.Clock.
func (t *Time) Now() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}
