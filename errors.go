package asyncx

import "fmt"

// cancelledError is the intrinsic failure kind produced when a
// CancellationToken or an explicit Cancel call completes an AsyncValue.
type cancelledError struct {
	cause error
}

func (e *cancelledError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("asyncx: cancelled: %v", e.cause)
	}
	return "asyncx: cancelled"
}

func (e *cancelledError) Unwrap() error { return e.cause }

// Cancelled is the sentinel failure value produced by cancellation.
// Compare with errors.Is(err, asyncx.Cancelled).
var Cancelled error = &cancelledError{}

// WrapCancelled wraps cause as a cancellation failure, preserving it for
// errors.Is/errors.As while still satisfying errors.Is(err, Cancelled).
func WrapCancelled(cause error) error {
	if cause == nil {
		return Cancelled
	}
	return &cancelledError{cause: cause}
}

func (e *cancelledError) Is(target error) bool {
	_, ok := target.(*cancelledError)
	return ok
}

// contextDeallocatedError is the intrinsic failure kind produced when the
// host of an ExecutionContext dies while work bound to it is pending.
type contextDeallocatedError struct{}

func (e *contextDeallocatedError) Error() string {
	return "asyncx: execution context deallocated"
}

// ErrContextDeallocated is the sentinel failure value produced by
// AfterContext when its ExecutionContext's host is garbage-collected
// before the delay elapses. AfterContext is the only producer of it;
// there is no general context-bound construction block, and channels
// never complete with it.
var ErrContextDeallocated error = &contextDeallocatedError{}
