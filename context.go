package asyncx

import (
	"runtime"
	"sync"
	"weak"
)

// ExecutionContext binds a default Executor together with a
// CancellationToken whose lifetime tracks some host object — spec §4.H's
// requirement that subscriptions scoped to a view, request, or session
// automatically cancel once their host is no longer reachable, without
// the host ever calling an explicit teardown hook.
//
// It is built from Go 1.24's weak.Pointer and runtime.AddCleanup rather
// than the arena-of-slots scheme Design Notes describe as a fallback
// "where the target language lacks weak references natively" — Go has
// them natively, so ExecutionContext uses them directly instead of
// reimplementing a slot table.
type ExecutionContext struct {
	executor Executor
	token    *CancellationToken
	alive    func() bool

	mu       sync.Mutex
	weakDeps []func()
	hostDied bool
}

// NewExecutionContext returns an ExecutionContext whose token cancels
// automatically once host becomes unreachable. host may be nil for a
// context with no host lifetime to track, in which case the token only
// ever cancels in response to an explicit Cancel call.
func NewExecutionContext[H any](host *H, executor Executor) *ExecutionContext {
	ec := &ExecutionContext{executor: executor, token: NewCancellationToken()}
	ec.token.Add(cancelableFunc(ec.fireWeakDeps))

	if host == nil {
		ec.alive = func() bool { return true }
		return ec
	}

	wp := weak.Make(host)
	ec.alive = func() bool { return wp.Value() != nil }

	runtime.AddCleanup(host, func(ec *ExecutionContext) {
		ec.mu.Lock()
		ec.hostDied = true
		ec.mu.Unlock()
		ec.token.Cancel()
	}, ec)
	return ec
}

// Executor returns the default Executor work bound to this context
// should run on.
func (ec *ExecutionContext) Executor() Executor { return ec.executor }

// Token returns the CancellationToken that fires when either the bound
// host is garbage-collected or Cancel is called.
func (ec *ExecutionContext) Token() *CancellationToken { return ec.token }

// Cancel fires the context's token immediately, as if the host had died.
func (ec *ExecutionContext) Cancel() { ec.token.Cancel() }

// HostAlive reports whether the bound host is still reachable. Always
// true for a context constructed with a nil host.
func (ec *ExecutionContext) HostAlive() bool { return ec.alive() }

// HostDied reports whether this context's token fired because its host
// was garbage-collected, as opposed to an explicit Cancel call. Always
// false until the token fires, and false forever for a context
// constructed with a nil host.
func (ec *ExecutionContext) HostDied() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.hostDied
}

// fireWeakDeps runs and discards every dependent registered through
// BindWeak. Registered with ec's own token at construction, so it runs
// exactly once, whether the token fired from host death or an explicit
// Cancel.
func (ec *ExecutionContext) fireWeakDeps() {
	ec.mu.Lock()
	deps := ec.weakDeps
	ec.weakDeps = nil
	ec.mu.Unlock()

	for _, fire := range deps {
		fire()
	}
}

// BindWeak registers c to be cancelled when ec's token fires, either
// because its host died or because Cancel was called explicitly,
// without ec itself holding a strong reference to c in the meantime —
// spec §3/§4.H's "contexts hold their dependents weakly... so the user
// is free to drop their reference" — unlike CancellationToken.Add, whose
// own pending slice is intentionally strong (see cancel.go).
//
// BindWeak is a package-level function rather than a method because
// Cancel is defined on concrete pointer types (*Promise[T], and so on),
// not on T itself; the self-referential constraint PT lets it accept any
// such pointer and weakly reference its pointee directly.
func BindWeak[T any, PT interface {
	*T
	Cancelable
}](ec *ExecutionContext, c PT) {
	wp := weak.Make((*T)(c))
	fire := func() {
		if v := wp.Value(); v != nil {
			PT(v).Cancel()
		}
	}

	ec.mu.Lock()
	if ec.token.Cancelled() {
		ec.mu.Unlock()
		fire()
		return
	}
	ec.weakDeps = append(ec.weakDeps, fire)
	ec.mu.Unlock()
}
