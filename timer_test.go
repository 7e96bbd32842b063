package asyncx

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"
)

func TestAfter(t *testing.T) {
	t.Run("CompletesAfterDelay", func(t *testing.T) {
		f := After(5*time.Millisecond, Immediate, nil)
		result, err := f.Wait(context.Background())
		if err != nil || !result.IsSuccess() {
			t.Fatalf("got (%v, %v)", result, err)
		}
	})

	t.Run("TokenCancelPreventsCompletion", func(t *testing.T) {
		token := NewCancellationToken()
		f := After(time.Hour, Immediate, token)

		token.Cancel()

		result, err := f.Wait(context.Background())
		if err != nil {
			t.Fatalf("unexpected Wait error: %v", err)
		}
		if !errors.Is(result.Err(), Cancelled) {
			t.Fatalf("got %v", result.Err())
		}
	})

	t.Run("AlreadyCancelledTokenCancelsImmediately", func(t *testing.T) {
		token := NewCancellationToken()
		token.Cancel()

		f := After(time.Hour, Immediate, token)
		result, err := f.Wait(context.Background())
		if err != nil {
			t.Fatalf("unexpected Wait error: %v", err)
		}
		if !errors.Is(result.Err(), Cancelled) {
			t.Fatalf("got %v", result.Err())
		}
	})
}

func TestAfterContext(t *testing.T) {
	t.Run("CompletesAfterDelay", func(t *testing.T) {
		ec := NewExecutionContext[hostProbe](nil, Immediate)
		f := AfterContext(5*time.Millisecond, ec)

		result, err := f.Wait(context.Background())
		if err != nil || !result.IsSuccess() {
			t.Fatalf("got (%v, %v)", result, err)
		}
	})

	t.Run("ExplicitCancelYieldsCancelled", func(t *testing.T) {
		ec := NewExecutionContext[hostProbe](nil, Immediate)
		f := AfterContext(time.Hour, ec)

		ec.Cancel()

		result, err := f.Wait(context.Background())
		if err != nil {
			t.Fatalf("unexpected Wait error: %v", err)
		}
		if !errors.Is(result.Err(), Cancelled) {
			t.Fatalf("got %v", result.Err())
		}
	})

	t.Run("HostDeathYieldsContextDeallocated", func(t *testing.T) {
		var f *Future[struct{}]
		func() {
			host := new(hostProbe)
			ec := NewExecutionContext(host, Immediate)
			f = AfterContext(time.Hour, ec)
		}()

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			runtime.GC()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			result, err := f.Wait(ctx)
			cancel()
			if err != nil {
				continue
			}
			if !result.IsSuccess() {
				if !errors.Is(result.Err(), ErrContextDeallocated) {
					t.Fatalf("got %v", result.Err())
				}
				return
			}
		}
		t.Fatal("expected the delayed future to complete with ErrContextDeallocated once the host died")
	})
}
