package asyncx

import (
	"sync"

	"code.hybscloud.com/atomix"
)

// Cancelable is anything a CancellationToken can fan a cancellation
// signal out to: Promises, Producers, and pending timer-scheduled blocks
// all implement it.
type Cancelable interface {
	Cancel()
}

// CancellationToken is a one-way fan-out signal: Add registers a
// Cancelable, Cancel flips the token and cancels every registered
// Cancelable exactly once. Adding a Cancelable after the token has
// already been cancelled cancels it immediately, inline.
//
// Adapted from the teacher's Signal (signal.go): a Signal is a listener
// set notified in-place by a single-threaded Coroutine; CancellationToken
// is the same listener-set-plus-notify shape made safe for concurrent use,
// with the one-way "cancelled" flag held in an atomix.Bool the way
// hayabusa-cloud-lfq's tests hold a one-way "timedOut" flag.
type CancellationToken struct {
	mu        sync.Mutex
	cancelled atomix.Bool
	pending   []Cancelable
}

// NewCancellationToken returns a fresh, uncancelled token.
func NewCancellationToken() *CancellationToken {
	return &CancellationToken{}
}

// Add registers c to be cancelled when the token is cancelled. If the
// token is already cancelled, c is cancelled immediately, before Add
// returns.
func (t *CancellationToken) Add(c Cancelable) {
	t.mu.Lock()
	if t.cancelled.Load() {
		t.mu.Unlock()
		c.Cancel()
		return
	}
	t.pending = append(t.pending, c)
	t.mu.Unlock()
}

// Cancel flips the token and cancels every currently- and
// previously-added Cancelable exactly once. Idempotent: subsequent calls
// are no-ops.
func (t *CancellationToken) Cancel() {
	t.mu.Lock()
	if !t.cancelled.CompareAndSwap(false, true) {
		t.mu.Unlock()
		return
	}
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()

	for _, c := range pending {
		c.Cancel()
	}
}

// Cancelled reports whether the token has been cancelled.
func (t *CancellationToken) Cancelled() bool {
	return t.cancelled.Load()
}
