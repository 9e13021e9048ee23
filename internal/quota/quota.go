// Package quota implements the per-identity daily usage budget.
//
// The tracker is a process-local, in-memory counter with lazy daily reset:
// the first admitted request from an identity opens a 24-hour window anchored
// at that request, and at most Limit requests are admitted until the window
// closes. The window is rolling and per-identity, not a calendar day: each
// identity's boundary is set independently by its own first request after the
// previous window expired.
//
// Features:
//   - Single mutex guarding the whole store (contention is low: one short
//     critical section per request, no I/O under the lock)
//   - Injectable clock and window duration for deterministic tests
//   - Best-effort sweep of long-expired entries to bound memory
//
// Notes:
//   - State is memory-resident only. It does not survive a restart and is not
//     shared between instances; a horizontally scaled deployment needs an
//     external limiter instead.
//   - Admission for the same identity is serialized by the lock, so a window
//     is created exactly once per reset even when requests race the boundary.
package quota

import (
	"sync"
	"time"
)

// Clock returns the current time. Production uses time.Now; tests substitute
// a controllable function.
type Clock func() time.Time

// DefaultWindow is the accumulation period for one identity's budget.
const DefaultWindow = 24 * time.Hour

// sweepEvery is the number of Admit calls between best-effort sweeps of
// entries whose window expired more than a full window ago.
const sweepEvery = 5000

// record is one identity's usage state within its current window.
type record struct {
	count   int
	resetAt time.Time
}

// Decision is the outcome of an admission check.
//
// For an allowed request, Used includes the request itself and ResetAt is the
// end of the (possibly freshly opened) window. For a rejected request,
// RetryAfter is the remaining time until ResetAt; rejected requests never
// mutate the store.
type Decision struct {
	Allowed    bool
	Used       int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Tracker admits or rejects requests against a fixed per-identity daily
// budget. It owns the underlying store exclusively; all mutation goes through
// Admit. The zero value is not usable; construct with NewTracker.
//
// Tracker is safe for concurrent use.
type Tracker struct {
	limit  int
	window time.Duration
	now    Clock

	mu      sync.Mutex
	records map[string]*record
	sweepN  uint64
}

// Option customizes a Tracker. Options exist mainly for tests.
type Option func(*Tracker)

// WithClock substitutes the time source.
func WithClock(c Clock) Option {
	return func(t *Tracker) {
		if c != nil {
			t.now = c
		}
	}
}

// WithWindow overrides the window duration (default 24h).
func WithWindow(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.window = d
		}
	}
}

// NewTracker constructs a Tracker admitting at most limit requests per
// identity per window. Limits below 1 are coerced to 1.
func NewTracker(limit int, opts ...Option) *Tracker {
	if limit < 1 {
		limit = 1
	}
	t := &Tracker{
		limit:   limit,
		window:  DefaultWindow,
		now:     time.Now,
		records: make(map[string]*record),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Limit returns the configured per-window budget.
func (t *Tracker) Limit() int { return t.limit }

// Admit decides whether one more request from identity fits the current
// window, consuming a slot when it does.
//
// Semantics:
//   - No record, or the window has ended: open a fresh window with count 1
//     and resetAt now+window; admit.
//   - Budget exhausted: reject, reporting when the window resets.
//   - Otherwise: increment and admit.
//
// A consumed slot is never refunded, even if the downstream work fails.
func (t *Tracker) Admit(identity string) Decision {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	// Sweep before touching the requested record so an identity that has been
	// idle past a full extra window is dropped rather than refreshed.
	t.sweepN++
	if t.sweepN >= sweepEvery {
		for k, r := range t.records {
			if now.Sub(r.resetAt) >= t.window {
				delete(t.records, k)
			}
		}
		t.sweepN = 0
	}

	r, ok := t.records[identity]
	if !ok || !now.Before(r.resetAt) {
		r = &record{count: 1, resetAt: now.Add(t.window)}
		t.records[identity] = r
		return Decision{
			Allowed:   true,
			Used:      1,
			Remaining: t.limit - 1,
			ResetAt:   r.resetAt,
		}
	}

	if r.count >= t.limit {
		return Decision{
			Allowed:    false,
			Used:       r.count,
			Remaining:  0,
			ResetAt:    r.resetAt,
			RetryAfter: r.resetAt.Sub(now),
		}
	}

	r.count++
	return Decision{
		Allowed:   true,
		Used:      r.count,
		Remaining: t.limit - r.count,
		ResetAt:   r.resetAt,
	}
}

// Peek reports the identity's current usage without consuming a slot.
// For an unknown identity, or one whose window has ended, Used is zero and
// ResetAt is the zero time (no active window).
func (t *Tracker) Peek(identity string) Decision {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.records[identity]
	if !ok || !now.Before(r.resetAt) {
		return Decision{Allowed: true, Used: 0, Remaining: t.limit}
	}

	d := Decision{
		Allowed:   r.count < t.limit,
		Used:      r.count,
		Remaining: t.limit - r.count,
		ResetAt:   r.resetAt,
	}
	if !d.Allowed {
		d.RetryAfter = r.resetAt.Sub(now)
	}
	return d
}

// Len returns the number of identities currently tracked (including entries
// whose window has expired but which have not been swept yet).
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}
