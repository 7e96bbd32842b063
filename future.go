package asyncx

import (
	"context"
	"runtime"
)

// futureState is the immutable snapshot a Promise's head points to: one
// of the three states spec §3 describes for AsyncValue, specialized to a
// single terminal value.
//
//   - Initial:    len(subs) == 0, done == false, notifier possibly set.
//   - Subscribed: len(subs) != 0, done == false.
//   - Completed:  done == true, result holds the final Fallible.
type futureState[T any] struct {
	subs     []weakHandler[Fallible[T]]
	notifier func()
	done     bool
	result   Fallible[T]
}

// Promise is the read+write handle for a single completion: the producer
// side of a Future.
type Promise[T any] struct {
	h    *head[futureState[T]]
	pool ReleasePool
}

// NewPromise returns a fresh, incomplete Promise.
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{h: newHead(&futureState[T]{})}
}

// NewPromiseWithLazyStart returns a fresh Promise whose onFirstSubscribe
// hook fires exactly once, the moment the first subscriber registers
// (spec §4.F: "if this was the first subscription... invoke the lazy-start
// notifier exactly once"). If the Promise completes before anyone
// subscribes, the hook never fires.
func NewPromiseWithLazyStart[T any](onFirstSubscribe func()) *Promise[T] {
	return &Promise[T]{h: newHead(&futureState[T]{notifier: onFirstSubscribe})}
}

// Future returns the read-only handle for p.
func (p *Promise[T]) Future() *Future[T] { return &Future[T]{p: p} }

// ReleasePool returns p's release pool, drained exactly once when p
// completes.
func (p *Promise[T]) ReleasePool() *ReleasePool { return &p.pool }

// Cancel completes p with the Cancelled failure if it has not already
// completed. Satisfies Cancelable, so a Promise can be registered with a
// CancellationToken directly.
func (p *Promise[T]) Cancel() {
	p.TryComplete(Failure[T](Cancelled), nil)
}

// TryComplete attempts to move p from Initial/Subscribed to Completed
// with result. It returns true exactly once, for whichever caller's
// compare-and-swap wins the race (spec §8 "Completion uniqueness"); every
// other caller, concurrent or later, gets false and does nothing further.
//
// On success, the former subscriber chain is walked iteratively and each
// live handler is dispatched through its recorded Executor, then the
// release pool drains. from is passed through as the originating Executor
// for strictAsync inlining decisions; pass nil if the caller is not
// itself running on an asyncx Executor.
func (p *Promise[T]) TryComplete(result Fallible[T], from Executor) bool {
	old, new := p.h.update(func(old *futureState[T]) *futureState[T] {
		if old.done {
			return old
		}
		return &futureState[T]{done: true, result: result}
	})
	won := !old.done
	if won {
		deliverAll(old.subs, result, from)
		p.pool.Drain()
	}
	_ = new
	return won
}

// Subscribe registers a completion subscriber. If p has already
// completed, onEvent is scheduled on ex exactly once and Subscribe
// returns a trivial (already-delivered) Handler. Otherwise a new Handler
// is pushed onto the subscriber stack; if this was the first subscription
// since construction, the Promise's lazy-start hook (if any) fires
// exactly once, after the registration commits.
func (p *Promise[T]) Subscribe(ex Executor, onEvent func(Fallible[T], Executor)) *Handler[Fallible[T]] {
	h := newHandler(ex, onEvent)

	old, new := p.h.update(func(old *futureState[T]) *futureState[T] {
		if old.done {
			return old
		}
		next := &futureState[T]{
			subs: append(append([]weakHandler[Fallible[T]](nil), old.subs...), makeWeakHandler(h)),
		}
		return next
	})

	if old.done {
		dispatch(ex, nil, func(origin Executor) { onEvent(old.result, origin) })
		return h
	}

	_ = new
	if len(old.subs) == 0 && old.notifier != nil {
		old.notifier()
	}
	return h
}

// CompleteWith subscribes to src and forwards its completion into p via
// TryComplete. The forwarding Handler is retained in p's release pool so
// it stays alive exactly as long as p does — the cyclic-ownership pattern
// Design Notes §9 describes (p's pool retains the handler, which the
// producer side of src holds only weakly).
func (p *Promise[T]) CompleteWith(src *Future[T]) {
	h := src.p.Subscribe(Immediate, func(f Fallible[T], from Executor) {
		p.TryComplete(f, from)
	})
	p.pool.Insert(h)
}

// Future is the read-only handle for a single completion.
type Future[T any] struct {
	p *Promise[T]
}

// NewCompletedFuture returns a Future that is already completed with
// result.
func NewCompletedFuture[T any](result Fallible[T]) *Future[T] {
	p := &Promise[T]{h: newHead(&futureState[T]{done: true, result: result})}
	return p.Future()
}

// Subscribe registers a completion subscriber on the underlying Promise.
func (f *Future[T]) Subscribe(ex Executor, onEvent func(Fallible[T], Executor)) *Handler[Fallible[T]] {
	return f.p.Subscribe(ex, onEvent)
}

// Wait blocks the calling goroutine until f completes, or until ctx is
// done, whichever happens first. On context cancellation it returns the
// zero Fallible and ctx.Err(); this is the Go-idiomatic replacement for
// spec's `wait(timeout?)`.
func (f *Future[T]) Wait(ctx context.Context) (Fallible[T], error) {
	ch := make(chan Fallible[T], 1)
	h := f.Subscribe(Immediate, func(result Fallible[T], _ Executor) {
		ch <- result
	})
	// h is held only weakly by the Promise's subscriber list; keep it
	// strongly reachable until delivery (or cancellation) is certain, or a
	// GC between Subscribe and the matching TryComplete can collect it
	// first and drop this wait forever.
	defer runtime.KeepAlive(h)
	select {
	case result := <-ch:
		return result, nil
	case <-ctx.Done():
		var zero Fallible[T]
		return zero, ctx.Err()
	}
}
