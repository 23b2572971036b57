// Package ratelimit provides per-user admission control for chat turns.
//
// Admission uses a fixed window: the first request for a user (or the first
// after the window has elapsed) starts a fresh window, and only the first
// limit requests inside a window are allowed. The state is process-local:
// counters reset on restart and are not shared across instances, which is
// acceptable for abuse mitigation but not for hard quota enforcement. A deployment that needs shared counters swaps in a different
// WindowStore.
package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Default admission parameters.
const (
	// DefaultLimit is the maximum number of admissions per user per window.
	DefaultLimit = 10
	// DefaultWindow is the fixed admission window length.
	DefaultWindow = 60 * time.Second
)

// Admitter decides whether a user's next chat turn may invoke the model.
type Admitter interface {
	Allow(userID string) bool
}

// WindowStore tracks per-user counters for the fixed admission window.
// Increment must be a single atomic increment-and-report, not a read followed
// by a write, so concurrent turns for the same user cannot race past the
// limit.
type WindowStore interface {
	// Increment advances the user's counter inside the window containing now,
	// starting a new window when none is active or the previous one has
	// elapsed, and returns the count after the increment.
	Increment(userID string, now time.Time, window time.Duration) int
	// DropStale removes windows that started before the given cutoff and
	// returns how many were removed.
	DropStale(cutoff time.Time) int
}

// windowEntry tracks one user's current window.
type windowEntry struct {
	start time.Time
	count int
}

// MemoryWindowStore is the in-process WindowStore.
type MemoryWindowStore struct {
	mu      sync.Mutex
	windows map[string]*windowEntry
}

// NewMemoryWindowStore creates an empty in-process window store.
func NewMemoryWindowStore() *MemoryWindowStore {
	return &MemoryWindowStore{windows: make(map[string]*windowEntry)}
}

// Increment implements WindowStore under a single lock hold.
func (s *MemoryWindowStore) Increment(userID string, now time.Time, window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.windows[userID]
	if !ok || now.Sub(entry.start) >= window {
		s.windows[userID] = &windowEntry{start: now, count: 1}
		return 1
	}
	entry.count++
	return entry.count
}

// DropStale implements WindowStore.
func (s *MemoryWindowStore) DropStale(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for userID, entry := range s.windows {
		if entry.start.Before(cutoff) {
			delete(s.windows, userID)
			dropped++
		}
	}
	return dropped
}

// WindowLimiter is the process-local Admitter.
type WindowLimiter struct {
	store  WindowStore
	limit  int
	window time.Duration
	now    func() time.Time
}

// Option configures a WindowLimiter.
type Option func(*WindowLimiter)

// WithLimit overrides the per-window admission limit.
func WithLimit(n int) Option {
	return func(l *WindowLimiter) {
		if n > 0 {
			l.limit = n
		}
	}
}

// WithWindow overrides the window length.
func WithWindow(d time.Duration) Option {
	return func(l *WindowLimiter) {
		if d > 0 {
			l.window = d
		}
	}
}

// WithStore injects a WindowStore, e.g. one backed by a shared cache.
func WithStore(store WindowStore) Option {
	return func(l *WindowLimiter) {
		if store != nil {
			l.store = store
		}
	}
}

// NewWindowLimiter creates a WindowLimiter with the default fixed-window
// parameters unless overridden.
func NewWindowLimiter(opts ...Option) *WindowLimiter {
	l := &WindowLimiter{
		store:  NewMemoryWindowStore(),
		limit:  DefaultLimit,
		window: DefaultWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	slog.Debug("Creating WindowLimiter", "limit", l.limit, "window", l.window)
	return l
}

// Allow reports whether the user's next turn is admitted. Denied turns still
// count against the window; denial yields a friendly retryable response
// upstream, never an error.
func (l *WindowLimiter) Allow(userID string) bool {
	count := l.store.Increment(userID, l.now(), l.window)
	if count > l.limit {
		slog.Debug("WindowLimiter.Allow: denied", "userID", userID, "count", count, "limit", l.limit)
		return false
	}
	return true
}

// Run sweeps windows that have sat idle past expiry so the map does not grow
// with one entry per user forever. It blocks until the context is cancelled.
func (l *WindowLimiter) Run(ctx context.Context) {
	slog.Info("WindowLimiter.Run: starting sweep loop", "interval", l.window)

	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("WindowLimiter.Run: stopping")
			return
		case <-ticker.C:
			cutoff := l.now().Add(-2 * l.window)
			if dropped := l.store.DropStale(cutoff); dropped > 0 {
				slog.Debug("WindowLimiter.Run: dropped stale windows", "count", dropped)
			}
		}
	}
}
