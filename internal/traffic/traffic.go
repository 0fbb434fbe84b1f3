// Package traffic keeps a short sliding window of lookup outcomes.
package traffic

import (
	"sync"
	"time"
)

// MaxAge is how long outcomes are retained.
const MaxAge = 5 * time.Minute

// Outcome classifies one lookup for the window.
type Outcome int

const (
	// Success is a lookup that returned a result.
	Success Outcome = iota
	// Rejected is a lookup refused for caller reasons (invalid input, unknown city).
	Rejected
	// Failed is a lookup that failed on the server side (timeout, upstream, unexpected).
	Failed
	// Denied is a request refused by the rate limiter.
	Denied
	numOutcomes
)

var defaultTracker Tracker

// Record records one outcome on the process-wide tracker.
func Record(o Outcome) {
	defaultTracker.Record(o)
}

// Count returns how many o outcomes the process-wide tracker saw within window.
func Count(o Outcome, window time.Duration) int {
	return defaultTracker.Count(o, window)
}

// FailureRatio returns failed / (success + rejected + failed) within window
// for the process-wide tracker.
func FailureRatio(window time.Duration) float64 {
	return defaultTracker.FailureRatio(window)
}

// Reset clears the process-wide tracker. For tests only.
func Reset() {
	defaultTracker.Reset()
}

// Tracker maintains one timestamp slice per outcome.
type Tracker struct {
	mu    sync.Mutex
	times [numOutcomes][]time.Time
	now   func() time.Time
}

func (t *Tracker) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}

// Record appends the current time for o and prunes entries older than MaxAge.
func (t *Tracker) Record(o Outcome) {
	if o < 0 || o >= numOutcomes {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock()
	t.times[o] = append(t.times[o], now)
	t.pruneLocked(now)
}

// Count returns the number of o outcomes within window.
func (t *Tracker) Count(o Outcome, window time.Duration) int {
	if o < 0 || o >= numOutcomes {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return countSince(t.times[o], t.clock().Add(-window))
}

// FailureRatio returns the share of lookups within window that failed on
// the server side. Denials are excluded. Zero when there were no lookups.
func (t *Tracker) FailureRatio(window time.Duration) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := t.clock().Add(-window)
	failed := countSince(t.times[Failed], cutoff)
	total := failed + countSince(t.times[Success], cutoff) + countSince(t.times[Rejected], cutoff)
	if total == 0 {
		return 0
	}
	return float64(failed) / float64(total)
}

// Reset clears all recorded outcomes.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.times {
		t.times[i] = nil
	}
}

// countSince counts timestamps not before cutoff. Slices are append-only in
// time order, so the scan stops at the first recent entry.
func countSince(times []time.Time, cutoff time.Time) int {
	for i, ts := range times {
		if !ts.Before(cutoff) {
			return len(times) - i
		}
	}
	return 0
}

// pruneLocked drops timestamps older than MaxAge. Must be called with mu held.
func (t *Tracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-MaxAge)
	for o := range t.times {
		times := t.times[o]
		i := 0
		for ; i < len(times) && times[i].Before(cutoff); i++ {
		}
		if i > 0 {
			t.times[o] = append(times[:0], times[i:]...)
		}
	}
}
