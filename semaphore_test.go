package asyncx

import (
	"sync"
	"testing"
	"time"
)

func TestSemaphore(t *testing.T) {
	t.Run("TryAcquireNoWaiters", func(t *testing.T) {
		sema := NewSemaphore(1)
		if !sema.TryAcquire(1) {
			t.Fatal("TryAcquire did not succeed with no contention.")
		}
		sema.Release(1)
	})
	t.Run("BlocksUntilReleased", func(t *testing.T) {
		sema := NewSemaphore(1)
		sema.acquireBlocking(1)

		released := make(chan struct{})
		go func() {
			sema.acquireBlocking(1)
			close(released)
		}()

		select {
		case <-released:
			t.Fatal("acquireBlocking returned before Release.")
		case <-time.After(20 * time.Millisecond):
		}

		sema.Release(1)
		<-released
		sema.Release(1)
	})
	t.Run("ConcurrentAcquireReleaseRestoresCapacity", func(t *testing.T) {
		sema := NewSemaphore(10)
		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sema.acquireBlocking(1)
				sema.Release(1)
			}()
		}
		wg.Wait()
		if !sema.TryAcquire(10) {
			t.Fatal("semaphore did not return to full capacity.")
		}
	})
	t.Run("NegativeWeightPanics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic on negative weight.")
			}
		}()
		NewSemaphore(1).acquireBlocking(-1)
	})
}
