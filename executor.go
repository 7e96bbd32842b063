package asyncx

import "time"

// Executor is a strategy for running a block of work: inline, through a
// queue, through a worker pool, or after a delay. It is the tagged-variant
// (Design Notes §9: "a tiny vtable... rather than a class hierarchy") that
// replaces the teacher's single concrete Executor type, which only ever
// ran Tasks cooperatively, one at a time, on whatever single goroutine
// called Run.
//
// StrictAsync reports whether every dispatch through this Executor must
// go through its own scheduler. When it is false, dispatch runs a block
// inline, without calling Execute, if the caller passes this same
// Executor as from.
type Executor interface {
	// Execute runs block, dispatched through e. from is the Executor the
	// caller is currently running on, or nil if unknown; the Executors in
	// this package ignore it, since the inline decision is made by dispatch.
	Execute(from Executor, block func(origin Executor))
	// ExecuteAfter schedules block to run after d has elapsed, dispatched
	// through e. The returned Cancelable cancels the pending delayed
	// dispatch; cancelling after the block has already started is a no-op.
	ExecuteAfter(d time.Duration, block func(origin Executor)) Cancelable
	StrictAsync() bool
}

// dispatch is the entry point every producer (Future, Channel) uses to
// hand a block to a subscriber's Executor, honoring the sync-or-async
// optionality of spec §4.F: "When the subscriber's executor has
// strictAsync=false and the caller-supplied originalExecutor is the same
// executor, delivery may be inline; otherwise it goes through the
// executor's queue."
func dispatch(target Executor, from Executor, block func(origin Executor)) {
	if !target.StrictAsync() && from != nil && sameExecutor(from, target) {
		block(target)
		return
	}
	target.Execute(from, block)
}

func sameExecutor(a, b Executor) (eq bool) {
	defer func() { _ = recover() }() // a custom Executor's concrete type may be incomparable
	return a == b
}

// immediateExecutor runs every block inline, on the calling goroutine.
type immediateExecutor struct{}

// Immediate is the Executor that runs every block synchronously, inline,
// on whatever goroutine calls Execute.
var Immediate Executor = immediateExecutor{}

func (immediateExecutor) Execute(_ Executor, block func(Executor)) { block(Immediate) }

func (immediateExecutor) ExecuteAfter(d time.Duration, block func(Executor)) Cancelable {
	return scheduleAfter(d, func() { block(Immediate) })
}

func (immediateExecutor) StrictAsync() bool { return false }

// cancelTimer adapts time.Timer to the Cancelable interface.
type cancelTimer struct{ t *time.Timer }

func (c cancelTimer) Cancel() { c.t.Stop() }

func scheduleAfter(d time.Duration, f func()) Cancelable {
	return cancelTimer{t: time.AfterFunc(d, f)}
}

// customExecutor wraps a user-supplied dispatch function.
type customExecutor struct {
	run         func(block func())
	strictAsync bool
}

// Custom returns an Executor that dispatches every block by calling run.
// strictAsync controls whether this Executor ever allows inline delivery
// when it is passed as the origin of a subscription's own executor.
func Custom(strictAsync bool, run func(block func())) Executor {
	return &customExecutor{run: run, strictAsync: strictAsync}
}

func (c *customExecutor) Execute(_ Executor, block func(Executor)) {
	c.run(func() { block(c) })
}

func (c *customExecutor) ExecuteAfter(d time.Duration, block func(Executor)) Cancelable {
	return scheduleAfter(d, func() { c.Execute(nil, block) })
}

func (c *customExecutor) StrictAsync() bool { return c.strictAsync }

// serialExecutor runs every block on a single dedicated goroutine that
// drains a FIFO queue: blocks run in submission order, never concurrently
// with each other.
type serialExecutor struct {
	jobs chan func()
}

// Queue returns an Executor backed by a single serial worker goroutine,
// matching spec's `queue(q)` variant wrapping a specific serial queue.
func Queue() Executor {
	e := &serialExecutor{jobs: make(chan func(), 256)}
	go func() {
		for job := range e.jobs {
			job()
		}
	}()
	return e
}

func (e *serialExecutor) Execute(_ Executor, block func(Executor)) {
	e.jobs <- func() { block(e) }
}

func (e *serialExecutor) ExecuteAfter(d time.Duration, block func(Executor)) Cancelable {
	return scheduleAfter(d, func() { e.Execute(nil, block) })
}

func (e *serialExecutor) StrictAsync() bool { return true }
