package asyncx

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestHead(t *testing.T) {
	t.Run("LoadReflectsLatestCommit", func(t *testing.T) {
		h := newHead(new(int))
		*h.load() = 0

		for i := 1; i <= 5; i++ {
			v := i
			h.update(func(*int) *int { return &v })
		}

		if got := *h.load(); got != 5 {
			t.Fatalf("got %d, want 5", got)
		}
	})

	t.Run("NoOpTransformSkipsCAS", func(t *testing.T) {
		h := newHead(new(int))
		before := h.load()
		old, new := h.update(func(old *int) *int { return old })
		if old != before || new != before {
			t.Fatal("a transform returning its input unchanged should leave the snapshot untouched")
		}
	})

	t.Run("ConcurrentIncrementsAllCommit", func(t *testing.T) {
		h := newHead(new(int64))
		*h.load() = 0

		var wg sync.WaitGroup
		const n = 200
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.update(func(old *int64) *int64 {
					next := *old + 1
					return &next
				})
			}()
		}
		wg.Wait()

		if got := *h.load(); got != n {
			t.Fatalf("got %d, want %d", got, n)
		}
	})

	t.Run("TransformMayRerunOnContention", func(t *testing.T) {
		h := newHead(new(int))
		var calls atomic.Int64

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.update(func(old *int) *int {
					calls.Add(1)
					next := *old + 1
					return &next
				})
			}()
		}
		wg.Wait()

		if calls.Load() < 50 {
			t.Fatalf("expected at least 50 calls, got %d", calls.Load())
		}
	})
}
