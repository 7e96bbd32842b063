package asyncx

import "sync"

// ReleasePool is a set-like keep-alive container, owned by every Promise
// and Producer, and drained exactly once at the moment its owner
// completes. It is the thread-safe analogue of the teacher's
// Task.Defer/clearInners mechanism (task.go): there, a Task accumulated a
// slice of taskOrFunc "inners" that were torn down, in reverse order, the
// moment the Task resumed, ended, or switched operations; here, a
// ReleasePool accumulates arbitrary keep-alive handles and drain
// callbacks that fire once, the moment the owning AsyncValue completes.
type ReleasePool struct {
	mu      sync.Mutex
	drained bool
	items   []any
	onDrain []func()
}

// Insert adds v to the pool, keeping it reachable until Drain runs. A
// no-op if the pool has already drained.
func (p *ReleasePool) Insert(v any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.drained {
		return
	}
	p.items = append(p.items, v)
}

// NotifyDrain schedules f to run when the pool drains. If the pool has
// already drained, f runs immediately, synchronously, on the calling
// goroutine.
func (p *ReleasePool) NotifyDrain(f func()) {
	p.mu.Lock()
	if p.drained {
		p.mu.Unlock()
		f()
		return
	}
	p.onDrain = append(p.onDrain, f)
	p.mu.Unlock()
}

// Drain is one-shot: the first call releases every inserted item and then
// runs every notify-drain callback, in insertion order. Subsequent calls
// are no-ops.
func (p *ReleasePool) Drain() {
	p.mu.Lock()
	if p.drained {
		p.mu.Unlock()
		return
	}
	p.drained = true
	items := p.items
	p.items = nil
	callbacks := p.onDrain
	p.onDrain = nil
	p.mu.Unlock()

	clear(items)
	for _, f := range callbacks {
		f()
	}
}
