package asyncx

import "code.hybscloud.com/atomix"

// countdown is a thread-safe completion counter with a one-shot callback,
// fired the instant the count reaches zero. It adapts the teacher's
// WaitGroup (a Signal plus a plain int counter, safe only for
// single-threaded Coroutine use) into something Zip and Merge
// (combinators.go) can share from multiple producer goroutines: the
// counter lives in an atomix.Int64 instead of a Signal-guarded int, and
// "resume any watcher" becomes "invoke onZero exactly once."
type countdown struct {
	n      atomix.Int64
	onZero func()
	fired  atomix.Bool
}

func newCountdown(n int64, onZero func()) *countdown {
	c := &countdown{onZero: onZero}
	c.n.Store(n)
	if n == 0 {
		c.fire()
	}
	return c
}

// done decrements the counter by one. If it reaches zero, onZero is
// invoked exactly once, regardless of how many goroutines call done
// concurrently.
func (c *countdown) done() {
	if c.n.Add(-1) == 0 {
		c.fire()
	}
}

func (c *countdown) fire() {
	if c.fired.CompareAndSwap(false, true) {
		c.onZero()
	}
}
