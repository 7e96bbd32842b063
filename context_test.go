package asyncx

import (
	"runtime"
	"testing"
	"time"
)

type hostProbe struct{ id int }

func TestExecutionContext(t *testing.T) {
	t.Run("ExposesExecutor", func(t *testing.T) {
		ec := NewExecutionContext[hostProbe](nil, Immediate)
		if ec.Executor() != Immediate {
			t.Fatal("expected Executor to return what it was constructed with")
		}
	})

	t.Run("NilHostNeverAutoCancels", func(t *testing.T) {
		ec := NewExecutionContext[hostProbe](nil, Immediate)
		if !ec.HostAlive() {
			t.Fatal("expected HostAlive to report true for a nil host")
		}
		if ec.Token().Cancelled() {
			t.Fatal("expected token to start uncancelled")
		}
	})

	t.Run("ExplicitCancel", func(t *testing.T) {
		ec := NewExecutionContext[hostProbe](nil, Immediate)
		ec.Cancel()
		if !ec.Token().Cancelled() {
			t.Fatal("expected Cancel to fire the token")
		}
	})

	t.Run("BindWeakRegistersWithToken", func(t *testing.T) {
		ec := NewExecutionContext[hostProbe](nil, Immediate)
		c := &countingCancelable{}
		BindWeak(ec, c)
		ec.Cancel()
		if c.n != 1 {
			t.Fatalf("got %d", c.n)
		}
	})

	t.Run("BindWeakDoesNotKeepDependentAlive", func(t *testing.T) {
		ec := NewExecutionContext[hostProbe](nil, Immediate)
		var collected bool
		func() {
			c := &countingCancelable{}
			runtime.AddCleanup(c, func(*int) { collected = true }, new(int))
			BindWeak(ec, c)
		}()

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			runtime.GC()
			if collected {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		if !collected {
			t.Fatal("expected BindWeak not to keep the dependent strongly reachable")
		}

		// Firing the token must not panic even though the dependent is gone.
		ec.Cancel()
	})

	t.Run("BindWeakAfterCancelFiresImmediately", func(t *testing.T) {
		ec := NewExecutionContext[hostProbe](nil, Immediate)
		ec.Cancel()

		c := &countingCancelable{}
		BindWeak(ec, c)
		if c.n != 1 {
			t.Fatalf("got %d", c.n)
		}
	})

	t.Run("HostAliveWhileReachable", func(t *testing.T) {
		host := new(hostProbe)
		ec := NewExecutionContext(host, Immediate)
		if !ec.HostAlive() {
			t.Fatal("expected HostAlive to report true while host is still referenced")
		}
		runtime.KeepAlive(host)
	})

	t.Run("HostDeathCancelsToken", func(t *testing.T) {
		var ec *ExecutionContext
		func() {
			host := new(hostProbe)
			ec = NewExecutionContext(host, Immediate)
		}()

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			runtime.GC()
			if ec.Token().Cancelled() {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Fatal("expected the token to cancel once the bound host became unreachable")
	})

	t.Run("HostDeathSetsHostDied", func(t *testing.T) {
		var ec *ExecutionContext
		func() {
			host := new(hostProbe)
			ec = NewExecutionContext(host, Immediate)
		}()

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			runtime.GC()
			if ec.HostDied() {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Fatal("expected HostDied to report true once the bound host became unreachable")
	})

	t.Run("ExplicitCancelDoesNotSetHostDied", func(t *testing.T) {
		ec := NewExecutionContext[hostProbe](nil, Immediate)
		ec.Cancel()
		if ec.HostDied() {
			t.Fatal("expected an explicit Cancel not to be reported as host death")
		}
	})
}
