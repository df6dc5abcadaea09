// sim/pool.go
//
// Finite-capacity resources. SlotPool hands out uniquely identified slots
// (setter and hatcher machine positions), CountPool hands out anonymous
// capacity units (truck loads), and Mutex is the FIFO advisory lock the barn
// allocator serializes on. None of them time out: a process waiting on
// capacity that never frees stays parked forever, which models true scarcity.

package sim

import "fmt"

// SlotPredicate filters slot identifiers, e.g. "same machine as the
// shipment's first cart". Predicates are a soft preference, never a hard
// constraint.
type SlotPredicate func(slotID string) bool

// slotWaiter is one parked acquirer. slot is filled in by Release before the
// waiter is resumed.
type slotWaiter struct {
	proc *Process
	pred SlotPredicate
	slot string
}

// SlotPool is a pool of pre-enumerated, identifiable capacity units. At most
// one lease per slot id is outstanding at any time, and outstanding leases
// never exceed the pool's capacity.
type SlotPool struct {
	env     *Env
	name    string
	free    []string
	leased  map[string]bool
	waiters []*slotWaiter
}

// NewSlotPool creates a pool whose capacity is the given slot id set.
func NewSlotPool(env *Env, name string, slotIDs []string) *SlotPool {
	free := make([]string, len(slotIDs))
	copy(free, slotIDs)
	return &SlotPool{
		env:    env,
		name:   name,
		free:   free,
		leased: make(map[string]bool),
	}
}

// Name returns the pool name.
func (sp *SlotPool) Name() string { return sp.name }

// Capacity returns the total number of slots in the pool.
func (sp *SlotPool) Capacity() int { return len(sp.free) + len(sp.leased) }

// InUse returns the number of outstanding leases.
func (sp *SlotPool) InUse() int { return len(sp.leased) }

// Waiting returns the number of parked acquirers.
func (sp *SlotPool) Waiting() int { return len(sp.waiters) }

// Acquire leases a slot, suspending the calling process until one is free.
// When free slots exist, a pred-matching slot is preferred but any free slot
// is taken if none matches (the predicate is an affinity hint, not a
// requirement). When the pool is empty the process parks FIFO; on release the
// first waiter whose predicate matches the freed slot is served, falling back
// to the queue head when none matches. Predicate waiters can therefore be
// skipped over by non-matching availability; there is no starvation guarantee
// under skewed predicates.
func (sp *SlotPool) Acquire(p *Process, pred SlotPredicate) string {
	if len(sp.free) > 0 {
		idx := 0
		if pred != nil {
			for i, id := range sp.free {
				if pred(id) {
					idx = i
					break
				}
			}
		}
		id := sp.free[idx]
		sp.free = append(sp.free[:idx], sp.free[idx+1:]...)
		sp.leased[id] = true
		return id
	}
	w := &slotWaiter{proc: p, pred: pred}
	sp.waiters = append(sp.waiters, w)
	p.park()
	return w.slot
}

// Release returns a leased slot to the pool and serves at most one waiter.
// Releasing a slot that is not leased is a programming error.
func (sp *SlotPool) Release(slotID string) {
	if !sp.leased[slotID] {
		panic(fmt.Sprintf("pool %s: release of slot %q that is not leased", sp.name, slotID))
	}
	delete(sp.leased, slotID)

	if len(sp.waiters) > 0 {
		idx := -1
		for i, w := range sp.waiters {
			if w.pred == nil || w.pred(slotID) {
				idx = i
				break
			}
		}
		if idx < 0 {
			idx = 0 // every waiter wants some other slot: fall back to the queue head
		}
		w := sp.waiters[idx]
		sp.waiters = append(sp.waiters[:idx], sp.waiters[idx+1:]...)
		w.slot = slotID
		sp.leased[slotID] = true
		sp.env.schedule(sp.env.now, w.proc)
		return
	}
	sp.free = append(sp.free, slotID)
}

// countWaiter is one parked acquirer of n anonymous units.
type countWaiter struct {
	proc *Process
	n    int
}

// CountPool is a pool of anonymous capacity units acquired by integer count.
// Partial-count leases are allowed; waiters are served strictly FIFO, so a
// large request at the head blocks smaller ones behind it.
type CountPool struct {
	env       *Env
	name      string
	capacity  int
	available int
	waiters   []*countWaiter
}

// NewCountPool creates a pool with all capacity units initially available.
func NewCountPool(env *Env, name string, capacity int) *CountPool {
	return &CountPool{env: env, name: name, capacity: capacity, available: capacity}
}

// Name returns the pool name.
func (cp *CountPool) Name() string { return cp.name }

// Capacity returns the configured unit count.
func (cp *CountPool) Capacity() int { return cp.capacity }

// Available returns the number of unleased units.
func (cp *CountPool) Available() int { return cp.available }

// Waiting returns the number of parked acquirers.
func (cp *CountPool) Waiting() int { return len(cp.waiters) }

// Acquire leases n units, suspending the calling process until they are free.
func (cp *CountPool) Acquire(p *Process, n int) {
	if n <= 0 || n > cp.capacity {
		panic(fmt.Sprintf("pool %s: acquire of %d units with capacity %d", cp.name, n, cp.capacity))
	}
	if len(cp.waiters) == 0 && cp.available >= n {
		cp.available -= n
		return
	}
	cp.waiters = append(cp.waiters, &countWaiter{proc: p, n: n})
	p.park()
}

// Release returns n units and serves waiters in FIFO order while they fit.
func (cp *CountPool) Release(n int) {
	if n <= 0 {
		panic(fmt.Sprintf("pool %s: release of %d units", cp.name, n))
	}
	cp.available += n
	if cp.available > cp.capacity {
		panic(fmt.Sprintf("pool %s: release overflows capacity (%d > %d)", cp.name, cp.available, cp.capacity))
	}
	for len(cp.waiters) > 0 && cp.waiters[0].n <= cp.available {
		w := cp.waiters[0]
		cp.waiters = cp.waiters[1:]
		cp.available -= w.n
		cp.env.schedule(cp.env.now, w.proc)
	}
}

// Mutex is a FIFO advisory lock. The barn allocator holds it across its whole
// decide-and-apply sequence so two concurrently arriving trucks can never
// reserve the same freed capacity.
type Mutex struct {
	env     *Env
	locked  bool
	waiters []*Process
}

// NewMutex creates an unlocked Mutex.
func NewMutex(env *Env) *Mutex {
	return &Mutex{env: env}
}

// Lock suspends the calling process until the lock is held.
func (m *Mutex) Lock(p *Process) {
	if !m.locked {
		m.locked = true
		return
	}
	m.waiters = append(m.waiters, p)
	p.park()
}

// Unlock releases the lock, transferring ownership to the longest waiter.
func (m *Mutex) Unlock() {
	if !m.locked {
		panic("mutex: unlock of unlocked mutex")
	}
	if len(m.waiters) > 0 {
		w := m.waiters[0]
		m.waiters = m.waiters[1:]
		// ownership transfers directly; locked stays true
		m.env.schedule(m.env.now, w)
		return
	}
	m.locked = false
}
