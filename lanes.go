package asyncx

import (
	"runtime"
	"sync"
	"time"
)

// Lane identifies one of the cooperative priority lanes a laneExecutor
// dispatches across. Lower values run first; jobs within the same lane
// run in FIFO arrival order.
type Lane int

const (
	UserInteractive Lane = iota
	UserInitiated
	Utility
	Background
)

// laneJob is the unit queued by a laneExecutor. It reuses the teacher's
// priorityqueue[E] (priorityqueue.go), which previously ordered *Task
// values by path; here it orders laneJob values by lane, then by arrival
// sequence, giving the "cooperative priority lanes" spec's §4.B calls for
// without writing a second priority-queue implementation.
type laneJob struct {
	lane Lane
	seq  uint64
	run  func()
}

func (j *laneJob) less(other *laneJob) bool {
	if j.lane != other.lane {
		return j.lane < other.lane
	}
	return j.seq < other.seq
}

// laneExecutor is a shared worker pool draining a single priority queue
// across Lane-tagged jobs. It bounds fan-out with the adapted Semaphore
// (semaphore.go) instead of spawning one goroutine per submitted block,
// addressing the teacher's own warning (doc.go, semaphore.go) that
// unbounded Task spawning "can easily consume a lot of memory over time."
type laneExecutor struct {
	lane Lane

	mu      sync.Mutex
	cond    *sync.Cond
	pq      priorityqueue[*laneJob]
	nextSeq uint64
	closed  bool

	sem *Semaphore
}

// newLanePool starts a shared pool of workers workers wide, bounded by a
// weighted Semaphore of the same width, and returns one Executor handle
// per Lane, all backed by the same pool.
func newLanePool(workers int64) [4]Executor {
	pool := &laneExecutor{sem: NewSemaphore(workers)}
	pool.cond = sync.NewCond(&pool.mu)

	for range workers {
		go pool.worker()
	}

	var out [4]Executor
	for l := Lane(0); l < 4; l++ {
		out[l] = laneHandle{pool: pool, lane: l}
	}
	return out
}

// ExecutorPool is a shared worker pool exposing four priority-lane
// Executors backed by the same bounded set of goroutines.
type ExecutorPool struct {
	lanes [4]Executor
}

// NewExecutorPool starts a pool of workers goroutines and returns an
// ExecutorPool exposing one Executor per [Lane], all drawing from the
// same bounded worker set.
func NewExecutorPool(workers int64) *ExecutorPool {
	return &ExecutorPool{lanes: newLanePool(workers)}
}

// Lane returns the Executor handle for lane l.
func (p *ExecutorPool) Lane(l Lane) Executor { return p.lanes[l] }

// primaryPool backs Primary: a single lane pool, sized to the host's
// GOMAXPROCS, started lazily the first time Primary is dispatched
// through rather than at package-init, so importing the package never
// spins up goroutines a program doesn't end up using.
var primaryPool = sync.OnceValue(func() *ExecutorPool {
	return NewExecutorPool(int64(runtime.GOMAXPROCS(0)))
})

// primaryExecutor is the Executor handle Primary delegates every call
// to. It exists so Primary itself can be a plain package-level Executor
// value rather than a function, without forcing primaryPool's pool of
// goroutines to start at package-init time.
type primaryExecutor struct{}

func (primaryExecutor) Execute(from Executor, block func(Executor)) {
	primaryPool().Lane(UserInitiated).Execute(from, block)
}

func (primaryExecutor) ExecuteAfter(d time.Duration, block func(Executor)) Cancelable {
	return primaryPool().Lane(UserInitiated).ExecuteAfter(d, block)
}

func (primaryExecutor) StrictAsync() bool { return true }

// Primary is the library's default Executor: a shared, GOMAXPROCS-wide
// lane pool running everything through its UserInitiated lane. It is
// the Executor spec's variant list calls "primary — library default
// (typically a shared concurrent queue)", distinct from [Immediate],
// [Queue], [Custom], and an explicitly constructed [ExecutorPool].
var Primary Executor = primaryExecutor{}

func (p *laneExecutor) worker() {
	for {
		p.mu.Lock()
		for p.pq.Empty() && !p.closed {
			p.cond.Wait()
		}
		if p.pq.Empty() && p.closed {
			p.mu.Unlock()
			return
		}
		job := p.pq.Pop()
		p.mu.Unlock()

		p.sem.acquireBlocking(1)
		runGuarded(job.run, func(error) {})
		p.sem.Release(1)
	}
}

func (p *laneExecutor) submit(lane Lane, run func()) {
	p.mu.Lock()
	seq := p.nextSeq
	p.nextSeq++
	p.pq.Push(&laneJob{lane: lane, seq: seq, run: run})
	p.mu.Unlock()
	p.cond.Signal()
}

// laneHandle is the user-facing Executor for one Lane of a laneExecutor
// pool. Multiple lanes share the same worker pool and Semaphore, so
// cross-lane priority is expressed purely through queue ordering.
type laneHandle struct {
	pool *laneExecutor
	lane Lane
}

func (h laneHandle) Execute(_ Executor, block func(Executor)) {
	h.pool.submit(h.lane, func() { block(h) })
}

func (h laneHandle) ExecuteAfter(d time.Duration, block func(Executor)) Cancelable {
	return scheduleAfter(d, func() { h.Execute(nil, block) })
}

func (laneHandle) StrictAsync() bool { return true }
