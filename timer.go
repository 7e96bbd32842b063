package asyncx

import "time"

// cancelableFunc adapts a plain function to Cancelable, for one-shot
// cleanup actions that don't need their own named type.
type cancelableFunc func()

func (f cancelableFunc) Cancel() { f() }

// After returns a Future that completes successfully once d has
// elapsed, dispatched through ex. If token fires first, the pending
// timer is stopped and the Future completes with the Cancelled failure
// instead — the Go-idiomatic rendering of spec §4's delayed-future
// construction, sharing CancellationToken's one-way fan-out with every
// other cancelable registered against the same token.
func After(d time.Duration, ex Executor, token *CancellationToken) *Future[struct{}] {
	p := NewPromise[struct{}]()

	timer := ex.ExecuteAfter(d, func(origin Executor) {
		p.TryComplete(Success(struct{}{}), origin)
	})

	if token != nil {
		token.Add(cancelableFunc(func() {
			timer.Cancel()
			p.TryComplete(Failure[struct{}](Cancelled), nil)
		}))
	}

	return p.Future()
}

// AfterContext is After, scoped to an ExecutionContext: the delayed
// Future is cancelled automatically once ec's host dies, same as any
// other work bound to ec, but the failure it completes with tells the
// two cases apart — ErrContextDeallocated for host death,
// Cancelled for an explicit ec.Cancel call — which plain After, having
// no host to ask, cannot distinguish.
func AfterContext(d time.Duration, ec *ExecutionContext) *Future[struct{}] {
	p := NewPromise[struct{}]()

	timer := ec.Executor().ExecuteAfter(d, func(origin Executor) {
		p.TryComplete(Success(struct{}{}), origin)
	})

	ec.Token().Add(cancelableFunc(func() {
		timer.Cancel()
		if ec.HostDied() {
			p.TryComplete(Failure[struct{}](ErrContextDeallocated), nil)
		} else {
			p.TryComplete(Failure[struct{}](Cancelled), nil)
		}
	}))

	return p.Future()
}
