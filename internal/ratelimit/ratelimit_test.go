package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWindowLimiterDeniesEleventhRequest(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewWindowLimiter()
	limiter.now = func() time.Time { return base }

	for i := 1; i <= DefaultLimit; i++ {
		if !limiter.Allow("user-1") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if limiter.Allow("user-1") {
		t.Error("11th request inside the window should be denied")
	}
	if limiter.Allow("user-1") {
		t.Error("12th request inside the window should still be denied")
	}
}

func TestWindowLimiterAllowsAfterWindowElapses(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewWindowLimiter()
	limiter.now = func() time.Time { return current }

	for i := 0; i <= DefaultLimit; i++ {
		limiter.Allow("user-1")
	}
	if limiter.Allow("user-1") {
		t.Fatal("request past the limit should be denied")
	}

	current = current.Add(DefaultWindow)
	if !limiter.Allow("user-1") {
		t.Error("1st request after the window elapses should start a fresh window and be allowed")
	}
}

func TestWindowLimiterIsolatesUsers(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewWindowLimiter()
	limiter.now = func() time.Time { return base }

	for i := 0; i <= DefaultLimit; i++ {
		limiter.Allow("user-1")
	}
	if limiter.Allow("user-1") {
		t.Fatal("user-1 should be exhausted")
	}
	if !limiter.Allow("user-2") {
		t.Error("user-2 should be unaffected by user-1's window")
	}
}

func TestWindowLimiterOptions(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewWindowLimiter(WithLimit(2), WithWindow(10*time.Second))
	limiter.now = func() time.Time { return base }

	if !limiter.Allow("user-1") || !limiter.Allow("user-1") {
		t.Fatal("first two requests should be allowed with limit 2")
	}
	if limiter.Allow("user-1") {
		t.Error("third request should be denied with limit 2")
	}
}

// Concurrent turns for one user must never race past the limit: the counter
// update is one increment-and-compare.
func TestWindowLimiterConcurrentSameUser(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewWindowLimiter()
	limiter.now = func() time.Time { return base }

	const attempts = 40
	var allowed int64
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			if limiter.Allow("user-1") {
				atomic.AddInt64(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	if allowed != DefaultLimit {
		t.Errorf("allowed %d concurrent requests; want exactly %d", allowed, DefaultLimit)
	}
}

func TestMemoryWindowStoreIncrementResetsAfterWindow(t *testing.T) {
	store := NewMemoryWindowStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if got := store.Increment("user-1", base, time.Minute); got != 1 {
		t.Errorf("first increment = %d; want 1", got)
	}
	if got := store.Increment("user-1", base.Add(30*time.Second), time.Minute); got != 2 {
		t.Errorf("in-window increment = %d; want 2", got)
	}
	if got := store.Increment("user-1", base.Add(time.Minute), time.Minute); got != 1 {
		t.Errorf("increment after window = %d; want reset to 1", got)
	}
}

func TestMemoryWindowStoreDropStale(t *testing.T) {
	store := NewMemoryWindowStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store.Increment("user-1", base, time.Minute)
	store.Increment("user-2", base.Add(90*time.Second), time.Minute)

	if dropped := store.DropStale(base.Add(time.Minute)); dropped != 1 {
		t.Errorf("DropStale removed %d windows; want 1", dropped)
	}
	// user-2's window started after the cutoff and must survive.
	if got := store.Increment("user-2", base.Add(100*time.Second), time.Minute); got != 2 {
		t.Errorf("surviving window count = %d; want 2", got)
	}
}
