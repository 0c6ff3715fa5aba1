package arena

import (
	"context"
	"sync"
	"time"
)

// Ticker runs a periodic tick for each registered battle session, pacing
// battles at a human-readable cadence.
//
// Invariant: all callbacks are invoked at most once per tick interval.
type Ticker struct {
	interval time.Duration
	mu       sync.Mutex
	ticks    map[string]func()
}

// NewTicker returns a ticker that fires every interval.
//
// Precondition: interval must be > 0.
func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		panic("arena.NewTicker: interval must be > 0")
	}
	return &Ticker{
		interval: interval,
		ticks:    make(map[string]func()),
	}
}

// Interval returns the tick period.
func (t *Ticker) Interval() time.Duration { return t.interval }

// RegisterTick registers a callback for sessionID. Replaces any existing callback.
func (t *Ticker) RegisterTick(sessionID string, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ticks[sessionID] = fn
}

// Unregister removes the tick callback for sessionID. Safe to call from
// inside a callback.
func (t *Ticker) Unregister(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.ticks, sessionID)
}

// Len returns the number of registered callbacks.
func (t *Ticker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ticks)
}

// Start begins the tick loop in a new goroutine. Runs until ctx is cancelled.
//
// Postcondition: all registered tick callbacks are invoked once per interval.
func (t *Ticker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.mu.Lock()
				callbacks := make([]func(), 0, len(t.ticks))
				for _, fn := range t.ticks {
					callbacks = append(callbacks, fn)
				}
				t.mu.Unlock()
				for _, fn := range callbacks {
					fn()
				}
			}
		}
	}()
}
