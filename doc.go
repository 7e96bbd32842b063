// Package asyncx is a library for asynchronous programming built around
// two primitives: [Future] (a value that resolves once) and [Channel] (a
// stream of values that resolves once, at the end). Both are produced
// through a writable counterpart, [Promise] and [Producer], and both are
// delivered through an [Executor], a pluggable strategy for where a
// subscriber's callback actually runs.
//
// Unlike the cooperative, single-threaded scheduling model this package
// started from, a [Promise] or [Producer] may be completed, subscribed
// to, and read from any number of goroutines concurrently. The state
// machine behind each one is a compare-and-swap loop over an immutable
// snapshot. A [Promise] holds no lock across a subscriber callback; a
// [Producer] serializes Send, Complete, and Subscribe behind a mutex that
// stays held while it dispatches to its subscribers. There is no way for
// one subscriber's panic to corrupt another's delivery.
//
// # Futures and Promises
//
// A [Promise] starts empty. [Promise.TryComplete] resolves it with a
// [Fallible] value exactly once; every later or concurrent call returns
// false and does nothing. [Promise.Future] hands out the read-only
// [Future] side, whose [Future.Subscribe] registers a callback and
// [Future.Wait] blocks the calling goroutine until resolution or context
// cancellation.
//
// # Channels and Producers
//
// A [Producer] is a stream: [Producer.Send] pushes an update, and
// [Producer.Complete] ends the stream exactly once, after which further
// sends are no-ops. [Producer.Channel] hands out the read-only [Channel]
// side. A bounded replay buffer means a subscriber that arrives late
// still sees the most recent updates before the live stream catches up.
//
// # Executors
//
// Every subscription names an [Executor]: [Immediate] runs a callback
// inline on whatever goroutine triggered it, [Queue] runs callbacks one
// at a time on a dedicated goroutine, and a lane-based executor pool
// (see [NewExecutorPool]) runs callbacks concurrently, ordered within
// four priority lanes. [Primary] is the library's default — a shared,
// GOMAXPROCS-wide lane pool — for callers with no reason to construct
// their own pool. [Custom] adapts any other dispatch mechanism — a UI
// event loop, a request-scoped worker — into the same interface.
//
// # Cancellation and Scoped Lifetimes
//
// A [CancellationToken] is a one-way fan-out signal: anything
// implementing [Cancelable] — a [Promise], a [Producer], a pending
// timer — can register with one and be cancelled together. An
// [ExecutionContext] pairs a token with an Executor and, optionally, the
// lifetime of some host object: once the host is garbage collected, its
// context's token fires on its own, with no explicit teardown call
// required anywhere in the subscriber's code.
//
// # Composition
//
// [MapFuture], [FlatMapFuture], [Zip2], and [ZipFutures] combine
// Futures; [MapChannel], [FilterChannel], [DistinctChannel],
// [DebounceChannel], and [MergeChannels] combine Channels. Each
// combinator is itself built only from Subscribe, TryComplete/Complete,
// and a [ReleasePool] to keep its internal subscription alive — the same
// primitives available to any caller.
package asyncx
