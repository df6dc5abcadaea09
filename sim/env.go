// sim/env.go
//
// The simulation clock and cooperative process scheduler. Time is measured in
// fractional days. Each logical process runs in its own goroutine, but at most
// one process executes at any moment: the scheduler resumes a process and then
// blocks until that process parks again (timed delay, resource wait, join) or
// exits. All cross-process interaction therefore happens at well-defined
// suspension points and shared state needs no locking.

package sim

import (
	"container/heap"
)

// wakeup is a scheduled resumption of a parked process.
type wakeup struct {
	time float64
	seq  int64 // insertion order; ties on time resolve FIFO
	proc *Process
}

// wakeupHeap implements heap.Interface and orders wakeups by (time, seq).
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type wakeupHeap []*wakeup

func (h wakeupHeap) Len() int { return len(h) }
func (h wakeupHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].seq < h[j].seq
}
func (h wakeupHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *wakeupHeap) Push(x any) {
	*h = append(*h, x.(*wakeup))
}

func (h *wakeupHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// Env is the discrete-event environment: one logical clock plus the pending
// wakeup queue. A fresh Env is independent of every other Env, so multiple
// simulations can run in the same test binary.
type Env struct {
	now    float64
	seq    int64
	events wakeupHeap
	yield  chan struct{} // signaled when the running process parks or exits
}

// NewEnv creates an empty environment with the clock at day 0.
func NewEnv() *Env {
	return &Env{
		events: make(wakeupHeap, 0),
		yield:  make(chan struct{}),
	}
}

// Now returns the current simulated time in days.
func (e *Env) Now() float64 {
	return e.now
}

// Pending returns the number of scheduled wakeups. Processes parked on a
// resource have no pending wakeup until the resource frees; a drained heap
// with parked processes is how starvation manifests.
func (e *Env) Pending() int {
	return len(e.events)
}

// schedule enqueues a wakeup for p at the given time.
func (e *Env) schedule(at float64, p *Process) {
	e.seq++
	heap.Push(&e.events, &wakeup{time: at, seq: e.seq, proc: p})
}

// Process is one logical thread of simulated activity. A Process must only
// call Delay/JoinAll (or park via a resource) from its own body function.
type Process struct {
	env     *Env
	name    string
	resume  chan struct{}
	done    bool
	waiters []*Process // processes joined on this one
}

// Spawn starts a new process whose body begins executing at the current
// simulated time, after the caller next parks.
func (e *Env) Spawn(name string, body func(*Process)) *Process {
	p := &Process{env: e, name: name, resume: make(chan struct{})}
	go func() {
		<-p.resume // first activation comes through the event queue
		body(p)
		p.finish()
		e.yield <- struct{}{}
	}()
	e.schedule(e.now, p)
	return p
}

// Name returns the process name given at Spawn.
func (p *Process) Name() string {
	return p.name
}

// Done reports whether the process body has returned.
func (p *Process) Done() bool {
	return p.done
}

// park hands control back to the scheduler and blocks until the process is
// resumed. A parked process has exactly one pending wake source: either a
// wakeup already in the event heap or a resource that will schedule one.
func (p *Process) park() {
	p.env.yield <- struct{}{}
	<-p.resume
}

// Delay suspends the process for d simulated days.
func (p *Process) Delay(d float64) {
	if d < 0 {
		d = 0
	}
	p.env.schedule(p.env.now+d, p)
	p.park()
}

// JoinAll suspends the process until every child has finished. This is the
// barrier a shipment uses to wait for its cart sub-processes.
func (p *Process) JoinAll(children ...*Process) {
	for _, c := range children {
		for !c.done {
			c.waiters = append(c.waiters, p)
			p.park()
		}
	}
}

// finish marks the process done and wakes any joined processes.
func (p *Process) finish() {
	p.done = true
	for _, w := range p.waiters {
		p.env.schedule(p.env.now, w)
	}
	p.waiters = nil
}

// Run drives the event loop until the heap drains or the clock would pass
// `until`. Wakeups beyond the horizon stay queued, so a later Run on the same
// Env resumes exactly where this one stopped. Processes parked on a resource
// that never frees are abandoned when Run returns; that is deliberate:
// permanent starvation shows up as queueing in the emitted records, not as an
// error.
func (e *Env) Run(until float64) {
	for e.events.Len() > 0 {
		if e.events[0].time > until {
			e.now = until
			return
		}
		w := heap.Pop(&e.events).(*wakeup)
		e.now = w.time
		w.proc.resume <- struct{}{}
		<-e.yield
	}
}
