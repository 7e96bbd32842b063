package asyncx

import (
	"sync"
	"time"
)

// MapFuture returns a Future that completes with transform applied to
// f's success, or f's failure unchanged. A panic inside transform is
// recovered into a failure, via Fallible's own LiftSuccess.
func MapFuture[T, U any](f *Future[T], transform func(T) U) *Future[U] {
	p := NewPromise[U]()
	h := f.Subscribe(Immediate, func(result Fallible[T], from Executor) {
		p.TryComplete(LiftSuccess(result, transform), from)
	})
	p.ReleasePool().Insert(h)
	return p.Future()
}

// FlatMapFuture returns a Future that completes with the future
// transform produces from f's success, or with f's failure unchanged. A
// panic inside transform is recovered into a failure.
func FlatMapFuture[T, U any](f *Future[T], transform func(T) *Future[U]) *Future[U] {
	p := NewPromise[U]()
	outer := f.Subscribe(Immediate, func(result Fallible[T], from Executor) {
		if !result.IsSuccess() {
			p.TryComplete(Failure[U](result.Err()), from)
			return
		}
		inner, err := flatMapInvoke(transform, result.Value())
		if err != nil {
			p.TryComplete(Failure[U](err), from)
			return
		}
		innerH := inner.Subscribe(Immediate, func(r Fallible[U], from2 Executor) {
			p.TryComplete(r, from2)
		})
		p.ReleasePool().Insert(innerH)
	})
	p.ReleasePool().Insert(outer)
	return p.Future()
}

func flatMapInvoke[T, U any](transform func(T) *Future[U], v T) (fut *Future[U], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicToError(r)
		}
	}()
	fut = transform(v)
	return
}

// Pair holds the result of Zip2.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Zip2 returns a Future that completes with both fa's and fb's
// successes paired together, or with whichever failure arrives first.
func Zip2[A, B any](fa *Future[A], fb *Future[B]) *Future[Pair[A, B]] {
	p := NewPromise[Pair[A, B]]()

	var mu sync.Mutex
	var pair Pair[A, B]
	var failOnce sync.Once

	cd := newCountdown(2, func() {
		mu.Lock()
		out := pair
		mu.Unlock()
		p.TryComplete(Success(out), nil)
	})

	ha := fa.Subscribe(Immediate, func(r Fallible[A], from Executor) {
		if !r.IsSuccess() {
			failOnce.Do(func() { p.TryComplete(Failure[Pair[A, B]](r.Err()), from) })
			return
		}
		mu.Lock()
		pair.First = r.Value()
		mu.Unlock()
		cd.done()
	})
	hb := fb.Subscribe(Immediate, func(r Fallible[B], from Executor) {
		if !r.IsSuccess() {
			failOnce.Do(func() { p.TryComplete(Failure[Pair[A, B]](r.Err()), from) })
			return
		}
		mu.Lock()
		pair.Second = r.Value()
		mu.Unlock()
		cd.done()
	})
	p.ReleasePool().Insert(ha)
	p.ReleasePool().Insert(hb)

	return p.Future()
}

// ZipFutures returns a Future that completes with every input future's
// success collected in order, or with whichever failure arrives first.
// An empty argument list completes immediately with an empty slice.
func ZipFutures[T any](futures ...*Future[T]) *Future[[]T] {
	p := NewPromise[[]T]()
	if len(futures) == 0 {
		p.TryComplete(Success[[]T](nil), nil)
		return p.Future()
	}

	results := make([]T, len(futures))
	var mu sync.Mutex
	var failOnce sync.Once

	cd := newCountdown(int64(len(futures)), func() {
		mu.Lock()
		out := append([]T(nil), results...)
		mu.Unlock()
		p.TryComplete(Success(out), nil)
	})

	for i, f := range futures {
		idx := i
		h := f.Subscribe(Immediate, func(r Fallible[T], from Executor) {
			if !r.IsSuccess() {
				failOnce.Do(func() { p.TryComplete(Failure[[]T](r.Err()), from) })
				return
			}
			mu.Lock()
			results[idx] = r.Value()
			mu.Unlock()
			cd.done()
		})
		p.ReleasePool().Insert(h)
	}

	return p.Future()
}

// MapChannel returns a Channel whose updates and completion are each
// transform applied to c's own, in order. A panic inside transform
// completes the derived Channel with that failure.
func MapChannel[T, U any](c *Channel[T], transform func(T) U) *Channel[U] {
	pr := NewProducer[U](0)
	h := c.Subscribe(Immediate, func(ev Event[T], from Executor) {
		switch ev.Kind {
		case EventUpdate:
			mapped := LiftSuccess(Success(ev.Update), transform)
			if mapped.IsSuccess() {
				pr.Send(mapped.Value(), from)
			} else {
				pr.Complete(Failure[U](mapped.Err()), from)
			}
		case EventCompletion:
			pr.Complete(LiftSuccess(ev.Completion, transform), from)
		}
	})
	pr.ReleasePool().Insert(h)
	return pr.Channel()
}

// FilterChannel returns a Channel carrying only the updates from c for
// which predicate returns true; completion is always forwarded.
func FilterChannel[T any](c *Channel[T], predicate func(T) bool) *Channel[T] {
	pr := NewProducer[T](0)
	h := c.Subscribe(Immediate, func(ev Event[T], from Executor) {
		switch ev.Kind {
		case EventUpdate:
			if predicate(ev.Update) {
				pr.Send(ev.Update, from)
			}
		case EventCompletion:
			pr.Complete(ev.Completion, from)
		}
	})
	pr.ReleasePool().Insert(h)
	return pr.Channel()
}

// DistinctChannel returns a Channel that drops an update equal to the
// immediately preceding one. The first update is always forwarded.
func DistinctChannel[T comparable](c *Channel[T]) *Channel[T] {
	pr := NewProducer[T](0)

	var mu sync.Mutex
	var last T
	var has bool

	h := c.Subscribe(Immediate, func(ev Event[T], from Executor) {
		switch ev.Kind {
		case EventUpdate:
			mu.Lock()
			skip := has && last == ev.Update
			has, last = true, ev.Update
			mu.Unlock()
			if !skip {
				pr.Send(ev.Update, from)
			}
		case EventCompletion:
			pr.Complete(ev.Completion, from)
		}
	})
	pr.ReleasePool().Insert(h)
	return pr.Channel()
}

// DebounceChannel returns a Channel that forwards an update only once d
// has elapsed, dispatched through ex, without a newer update arriving.
// Completion is forwarded immediately, cancelling any pending debounced
// update.
func DebounceChannel[T any](c *Channel[T], d time.Duration, ex Executor) *Channel[T] {
	pr := NewProducer[T](0)

	var mu sync.Mutex
	var pending Cancelable

	h := c.Subscribe(Immediate, func(ev Event[T], from Executor) {
		switch ev.Kind {
		case EventUpdate:
			v := ev.Update
			mu.Lock()
			if pending != nil {
				pending.Cancel()
			}
			pending = ex.ExecuteAfter(d, func(origin Executor) {
				pr.Send(v, origin)
			})
			mu.Unlock()
		case EventCompletion:
			mu.Lock()
			if pending != nil {
				pending.Cancel()
				pending = nil
			}
			mu.Unlock()
			pr.Complete(ev.Completion, from)
		}
	})
	pr.ReleasePool().Insert(h)
	return pr.Channel()
}

// MergeChannels returns a Channel carrying every update from every
// input channel, interleaved as they arrive, completing once every
// input has completed. It completes with the first failure seen among
// its inputs, or a zero-value success if every input completed
// successfully. An empty argument list completes immediately.
func MergeChannels[T any](channels ...*Channel[T]) *Channel[T] {
	pr := NewProducer[T](0)
	if len(channels) == 0 {
		var zero T
		pr.Complete(Success(zero), nil)
		return pr.Channel()
	}

	var mu sync.Mutex
	var failure error

	cd := newCountdown(int64(len(channels)), func() {
		mu.Lock()
		f := failure
		mu.Unlock()
		var zero T
		if f != nil {
			pr.Complete(Failure[T](f), nil)
		} else {
			pr.Complete(Success(zero), nil)
		}
	})

	for _, c := range channels {
		h := c.Subscribe(Immediate, func(ev Event[T], from Executor) {
			switch ev.Kind {
			case EventUpdate:
				pr.Send(ev.Update, from)
			case EventCompletion:
				if !ev.Completion.IsSuccess() {
					mu.Lock()
					if failure == nil {
						failure = ev.Completion.Err()
					}
					mu.Unlock()
				}
				cd.done()
			}
		})
		pr.ReleasePool().Insert(h)
	}

	return pr.Channel()
}
