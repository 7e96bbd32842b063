package asyncx

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// head is the single atomic synchronization point shared by every
// AsyncValue. It holds an immutable snapshot of type S; state transitions
// replace the whole snapshot via compare-and-swap rather than mutating it
// in place, so a reader that loaded an old snapshot never observes a
// half-applied transition.
//
// This is the generalized form of the teacher's Executor run-queue lock
// (executor.go): instead of a mutex guarding an in-place priority queue,
// here the guarded value is swapped wholesale, which is what lets Future
// stay lock-free on Subscribe and TryComplete. Producer also keeps its
// subscriber list in a head, but takes its own mutex around Send,
// Complete, and Subscribe (see channel.go).
type head[S any] struct {
	ptr atomix.Pointer[S]
}

// newHead creates a head whose initial snapshot is s.
func newHead[S any](s *S) *head[S] {
	h := &head[S]{}
	h.ptr.Store(s)
	return h
}

// load returns the current snapshot.
func (h *head[S]) load() *S {
	return h.ptr.Load()
}

// update applies transform in a compare-and-swap retry loop: it reads the
// current snapshot, computes the desired next snapshot by calling
// transform(old), and attempts to commit it. transform must be pure with
// respect to any state outside of old — it may be invoked more than once
// per call to update if another goroutine wins the race — and all side
// effects (notifying subscribers, draining a release pool) must happen
// after update returns, keyed off whether old != new.
//
// On contention, update backs off adaptively instead of busy-spinning,
// the same pattern hayabusa-cloud-sess uses around ErrWouldBlock retries.
func (h *head[S]) update(transform func(old *S) *S) (old, new *S) {
	var bo iox.Backoff
	for {
		old = h.ptr.Load()
		new = transform(old)
		if old == new || h.ptr.CompareAndSwap(old, new) {
			return old, new
		}
		bo.Wait()
	}
}
