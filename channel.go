package asyncx

import "sync"

// EventKind distinguishes the two event shapes a Channel subscriber
// receives: spec §4.G's "a single handler type delivers an event
// update(T) | completion(Fallible)".
type EventKind int

const (
	EventUpdate EventKind = iota
	EventCompletion
)

// Event is the payload delivered to a Channel/Producer subscriber: either
// an Update value or a terminal Completion, never both.
type Event[T any] struct {
	Kind       EventKind
	Update     T
	Completion Fallible[T]
}

// channelState is the immutable snapshot a Producer's head points to.
// Unlike futureState, the replay buffer is not part of this snapshot —
// it is held separately on the Producer and guarded by the Producer's own
// mutex, the "auxiliary mutable reference... guarded by a secondary
// atomic or a short critical section" spec §4.G explicitly allows.
type channelState[T any] struct {
	subs       []weakHandler[Event[T]]
	done       bool
	completion Fallible[T]
}

// Producer is the read+write handle for a stream of updates followed by a
// terminal completion: the writable side of a Channel.
//
// Producer serializes Send, Complete, and Subscribe behind a single
// mutex rather than keeping the replay buffer lock-free, because
// correct replay ordering requires reading "buffer snapshot" and
// "append subscriber" as one atomic step (spec §4.G's ordering
// guarantee: "no reordering, no skips within its own delivery lane").
// head is still used underneath for the subscriber-list/completion
// snapshot, keeping the same state-machine shape as Future, but with no
// contention to retry against — Design Notes §9 calls this "a short
// mutex per AsyncValue" and explicitly allows it.
type Producer[T any] struct {
	h    *head[channelState[T]]
	buf  *ringBuffer[T]
	pool ReleasePool
	mu   sync.Mutex
}

// NewProducer returns a fresh Producer whose replay buffer retains the
// last bufferSize updates for late subscribers.
func NewProducer[T any](bufferSize int) *Producer[T] {
	return &Producer[T]{
		h:   newHead(&channelState[T]{}),
		buf: newRingBuffer[T](bufferSize),
	}
}

// Channel returns the read-only handle for pr.
func (pr *Producer[T]) Channel() *Channel[T] { return &Channel[T]{pr: pr} }

// ReleasePool returns pr's release pool, drained exactly once when pr
// completes.
func (pr *Producer[T]) ReleasePool() *ReleasePool { return &pr.pool }

// Cancel completes pr with the Cancelled failure if it has not already
// completed. Satisfies Cancelable.
func (pr *Producer[T]) Cancel() {
	pr.Complete(Failure[T](Cancelled), nil)
}

// Send pushes v into the replay buffer, evicting the oldest entry if
// full, and dispatches an update event to every live subscriber. A no-op
// once pr has completed — spec §9's resolved Open Question: "a send that
// races with complete" is dropped, not delivered.
func (pr *Producer[T]) Send(v T, from Executor) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	st := pr.h.load()
	if st.done {
		return
	}
	pr.buf.push(v)
	deliverAll(st.subs, Event[T]{Kind: EventUpdate, Update: v}, from)
}

// Complete moves pr into its terminal state, after which Send becomes a
// permanent no-op. Returns false if pr had already completed.
func (pr *Producer[T]) Complete(result Fallible[T], from Executor) bool {
	pr.mu.Lock()

	old := pr.h.load()
	if old.done {
		pr.mu.Unlock()
		return false
	}
	pr.h.update(func(*channelState[T]) *channelState[T] {
		return &channelState[T]{done: true, completion: result}
	})
	defer pr.mu.Unlock()

	deliverAll(old.subs, Event[T]{Kind: EventCompletion, Completion: result}, from)
	pr.pool.Drain()
	return true
}

// Subscribe registers an event subscriber. If the replay buffer is
// non-empty, buffered updates are scheduled on ex, in insertion order,
// before any live update; if pr has already completed, the terminal
// completion is scheduled immediately after the replay. Live updates sent
// after Subscribe returns are delivered to the new handler in the same
// relative order as to every other subscriber.
func (pr *Producer[T]) Subscribe(ex Executor, onEvent func(Event[T], Executor)) *Handler[Event[T]] {
	h := newHandler(ex, onEvent)

	pr.mu.Lock()
	defer pr.mu.Unlock()

	buffered := pr.buf.snapshot()
	for _, v := range buffered {
		dispatch(ex, nil, func(origin Executor) {
			onEvent(Event[T]{Kind: EventUpdate, Update: v}, origin)
		})
	}

	st := pr.h.load()
	if st.done {
		dispatch(ex, nil, func(origin Executor) {
			onEvent(Event[T]{Kind: EventCompletion, Completion: st.completion}, origin)
		})
		return h
	}

	pr.h.update(func(old *channelState[T]) *channelState[T] {
		return &channelState[T]{
			subs: append(append([]weakHandler[Event[T]](nil), old.subs...), makeWeakHandler(h)),
		}
	})
	return h
}

// Channel is the read-only handle for a stream of updates followed by a
// terminal completion.
type Channel[T any] struct {
	pr *Producer[T]
}

// Subscribe registers an event subscriber on the underlying Producer.
func (c *Channel[T]) Subscribe(ex Executor, onEvent func(Event[T], Executor)) *Handler[Event[T]] {
	return c.pr.Subscribe(ex, onEvent)
}

// ProducerProxy is a Producer variant with a typed downstream setter
// callback, used for two-way binding such as a property bridge. A flag
// guards tryUpdateWithoutHandling against feedback loops: an update fed
// back from the very callback that tryUpdateWithoutHandling itself
// invoked is suppressed.
type ProducerProxy[T any] struct {
	*Producer[T]
	onDownstreamSet func(T)

	reentrantMu sync.Mutex
	reentrant   bool
}

// NewProducerProxy returns a ProducerProxy whose Set downstream callback
// is onDownstreamSet.
func NewProducerProxy[T any](bufferSize int, onDownstreamSet func(T)) *ProducerProxy[T] {
	return &ProducerProxy[T]{
		Producer:        NewProducer[T](bufferSize),
		onDownstreamSet: onDownstreamSet,
	}
}

// TryUpdateWithoutHandling sets the stored value and emits an update to
// subscribers without re-invoking onDownstreamSet, breaking the feedback
// loop that would otherwise occur when a downstream write round-trips
// back into the producer that originated it.
func (pp *ProducerProxy[T]) TryUpdateWithoutHandling(v T, from Executor) {
	pp.reentrantMu.Lock()
	pp.reentrant = true
	pp.reentrantMu.Unlock()

	pp.Send(v, from)

	pp.reentrantMu.Lock()
	pp.reentrant = false
	pp.reentrantMu.Unlock()
}

// Set pushes v to subscribers and, unless the update originated from
// TryUpdateWithoutHandling, forwards it to onDownstreamSet.
func (pp *ProducerProxy[T]) Set(v T, from Executor) {
	pp.reentrantMu.Lock()
	reentrant := pp.reentrant
	pp.reentrantMu.Unlock()

	pp.Send(v, from)
	if !reentrant && pp.onDownstreamSet != nil {
		pp.onDownstreamSet(v)
	}
}
