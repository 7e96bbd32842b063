// Package propbridge adapts an externally observable, externally
// settable property — the shape of Cocoa KVO, a UI framework's bound
// field, or a config-reload slot — onto asyncx's Channel and
// ProducerProxy, so that code written against asyncx never needs to
// know the host environment's own observation mechanism.
package propbridge

import "github.com/kynetic-io/asyncx"

// Property is the collaborator interface a host environment implements
// for a single bridgeable value.
type Property[T any] interface {
	// Get returns the property's current value.
	Get() T
	// Set assigns the property's value.
	Set(T)
	// Observe registers onChange to run, on an unspecified goroutine,
	// whenever the underlying value changes, including as a result of
	// a Set call this same bridge made. It returns a function that
	// deregisters onChange.
	Observe(onChange func(T)) (unobserve func())
}

// Option is a tagged some(T) | none union, the payload a bridged
// Channel delivers: a plain Property[T] cannot itself express absence,
// but a host may still want to drop or substitute for updates it
// considers "no value" — mirroring Fallible's Success/Failure naming
// for the same reason Fallible keeps success and "no event" apart.
type Option[T any] struct {
	value T
	some  bool
}

// Some wraps a present value.
func Some[T any](v T) Option[T] { return Option[T]{value: v, some: true} }

// None returns an absent Option of T.
func None[T any]() Option[T] { return Option[T]{} }

// IsSome reports whether o holds a value.
func (o Option[T]) IsSome() bool { return o.some }

// Value returns the held value, or the zero value if o is none.
func (o Option[T]) Value() T { return o.value }

// NonePolicy governs how a two-way Bind reconciles a None written to its
// ProducerProxy down into a call to the underlying Property's plain
// Set(T), which cannot itself represent absence.
type NonePolicy int

const (
	// DropNone discards a None update: Set is not called.
	DropNone NonePolicy = iota
	// ReplaceWithDefault calls Set with T's zero value.
	ReplaceWithDefault
)

// Watch returns a one-way Channel mirroring prop: every value prop
// reports, starting with its current Get, is delivered as Some(v).
// There is no Set path, so Watch never calls back into prop; it is the
// read-only half of the two constructors §6 requires, for callers that
// only need to observe.
func Watch[T any](prop Property[T], bufferSize int) *asyncx.Channel[Option[T]] {
	producer := asyncx.NewProducer[Option[T]](bufferSize)
	producer.Send(Some(prop.Get()), asyncx.Immediate)

	unobserve := prop.Observe(func(v T) {
		producer.Send(Some(v), asyncx.Immediate)
	})
	producer.ReleasePool().NotifyDrain(unobserve)

	return producer.Channel()
}

// Bind returns a ProducerProxy mirroring prop: every external change
// prop reports through Observe is forwarded as Some(v), and every
// update made on the returned proxy is reconciled back to a prop.Set
// call per policy — Some(v) always calls Set(v); None either is
// dropped or calls Set with T's zero value, depending on policy.
// Changes prop reports are pushed through TryUpdateWithoutHandling,
// which never calls prop.Set, so a write made through the proxy reaches
// prop.Set once and is not written back again; the change prop then
// reports for that write is emitted to the proxy's subscribers as one
// more update.
func Bind[T any](prop Property[T], bufferSize int, policy NonePolicy) *asyncx.ProducerProxy[Option[T]] {
	set := func(o Option[T]) {
		if o.IsSome() {
			prop.Set(o.Value())
			return
		}
		if policy == ReplaceWithDefault {
			var zero T
			prop.Set(zero)
		}
	}

	proxy := asyncx.NewProducerProxy(bufferSize, set)
	proxy.TryUpdateWithoutHandling(Some(prop.Get()), asyncx.Immediate)

	unobserve := prop.Observe(func(v T) {
		proxy.TryUpdateWithoutHandling(Some(v), asyncx.Immediate)
	})
	proxy.ReleasePool().NotifyDrain(unobserve)

	return proxy
}
