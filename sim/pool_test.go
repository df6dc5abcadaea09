package sim

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlotPool_AcquireRelease_TracksLeases(t *testing.T) {
	env := NewEnv()
	pool := NewSlotPool(env, "setter", []string{"s-1", "s-2"})

	var got []string
	env.Spawn("p", func(p *Process) {
		a := pool.Acquire(p, nil)
		b := pool.Acquire(p, nil)
		got = append(got, a, b)
	})
	env.Run(10)

	require.Len(t, got, 2)
	require.NotEqual(t, got[0], got[1], "the same slot id was leased twice concurrently")
	require.Equal(t, 2, pool.InUse())
	require.Equal(t, 2, pool.Capacity())
}

func TestSlotPool_EmptyPool_BlocksUntilRelease(t *testing.T) {
	// GIVEN a pool with a single slot held by the first process
	env := NewEnv()
	pool := NewSlotPool(env, "setter", []string{"only"})

	var acquiredAt []float64
	env.Spawn("first", func(p *Process) {
		pool.Acquire(p, nil)
		acquiredAt = append(acquiredAt, env.Now())
		p.Delay(3)
		pool.Release("only")
	})
	env.Spawn("second", func(p *Process) {
		pool.Acquire(p, nil)
		acquiredAt = append(acquiredAt, env.Now())
	})

	env.Run(10)

	// THEN the second acquirer visibly blocks until the release at day 3
	require.Equal(t, []float64{0, 3}, acquiredAt)
}

func TestSlotPool_Waiters_ServedFIFO(t *testing.T) {
	env := NewEnv()
	pool := NewSlotPool(env, "setter", []string{"only"})

	var order []string
	env.Spawn("holder", func(p *Process) {
		pool.Acquire(p, nil)
		p.Delay(1)
		pool.Release("only")
	})
	for _, name := range []string{"w1", "w2", "w3"} {
		name := name
		env.Spawn(name, func(p *Process) {
			pool.Acquire(p, nil)
			order = append(order, name)
			p.Delay(1)
			pool.Release("only")
		})
	}

	env.Run(0.5)
	require.Equal(t, 3, pool.Waiting())
	require.Equal(t, 1, pool.InUse())

	env.Run(20)

	require.Equal(t, []string{"w1", "w2", "w3"}, order)
	require.Equal(t, 0, pool.Waiting())
}

func TestSlotPool_Predicate_PrefersMatchingFreeSlot(t *testing.T) {
	env := NewEnv()
	pool := NewSlotPool(env, "setter", []string{"a-1", "a-2", "b-1"})

	var got string
	env.Spawn("p", func(p *Process) {
		got = pool.Acquire(p, func(id string) bool { return strings.HasPrefix(id, "b-") })
	})
	env.Run(10)

	require.Equal(t, "b-1", got)
}

func TestSlotPool_Predicate_FallsBackWhenNoMatchFree(t *testing.T) {
	// The affinity predicate is a soft preference: with no matching slot
	// free, any free slot is taken instead of blocking.
	env := NewEnv()
	pool := NewSlotPool(env, "setter", []string{"a-1"})

	var got string
	env.Spawn("p", func(p *Process) {
		got = pool.Acquire(p, func(id string) bool { return strings.HasPrefix(id, "b-") })
	})
	env.Run(10)

	require.Equal(t, "a-1", got)
}

func TestSlotPool_PredicateWaiter_SkippedByNonMatchingRelease(t *testing.T) {
	// GIVEN waiter w1 (wants b-*) queued ahead of w2 (no predicate)
	env := NewEnv()
	pool := NewSlotPool(env, "setter", []string{"a-1", "b-1"})

	var order []string
	env.Spawn("holders", func(p *Process) {
		pool.Acquire(p, func(id string) bool { return id == "a-1" })
		pool.Acquire(p, func(id string) bool { return id == "b-1" })
		p.Delay(1)
		pool.Release("a-1")
		p.Delay(1)
		pool.Release("b-1")
	})
	env.Spawn("w1", func(p *Process) {
		got := pool.Acquire(p, func(id string) bool { return strings.HasPrefix(id, "b-") })
		order = append(order, "w1:"+got)
	})
	env.Spawn("w2", func(p *Process) {
		got := pool.Acquire(p, nil)
		order = append(order, "w2:"+got)
	})

	env.Run(10)

	// THEN the a-1 release skips w1 and serves w2; the b-1 release serves w1
	require.Equal(t, []string{"w2:a-1", "w1:b-1"}, order)
}

func TestSlotPool_ReleaseUnleased_Panics(t *testing.T) {
	env := NewEnv()
	pool := NewSlotPool(env, "setter", []string{"s-1"})
	require.Panics(t, func() { pool.Release("s-1") })
}

func TestCountPool_PartialLeases(t *testing.T) {
	env := NewEnv()
	pool := NewCountPool(env, "trucks", 5)

	env.Spawn("p", func(p *Process) {
		pool.Acquire(p, 2)
		pool.Acquire(p, 1)
	})
	env.Run(10)

	require.Equal(t, 2, pool.Available())
	require.Equal(t, 5, pool.Capacity())
}

func TestCountPool_BlocksUntilEnoughUnits(t *testing.T) {
	env := NewEnv()
	pool := NewCountPool(env, "trucks", 3)

	var acquiredAt float64
	env.Spawn("holder", func(p *Process) {
		pool.Acquire(p, 3)
		p.Delay(2)
		pool.Release(1)
		p.Delay(2)
		pool.Release(2)
	})
	env.Spawn("waiter", func(p *Process) {
		pool.Acquire(p, 2)
		acquiredAt = env.Now()
	})

	env.Run(1)
	require.Equal(t, 1, pool.Waiting())
	require.Equal(t, 0, pool.Available())

	env.Run(10)

	// two units are only available after the second release at day 4
	require.Equal(t, float64(4), acquiredAt)
	require.Equal(t, 0, pool.Waiting())
}

func TestCountPool_FIFOHeadOfLine(t *testing.T) {
	// A large request at the head blocks a smaller one behind it even when
	// the smaller one would fit.
	env := NewEnv()
	pool := NewCountPool(env, "trucks", 4)

	var order []string
	env.Spawn("holder", func(p *Process) {
		pool.Acquire(p, 4)
		p.Delay(1)
		pool.Release(2)
		p.Delay(1)
		pool.Release(2)
	})
	env.Spawn("big", func(p *Process) {
		pool.Acquire(p, 3)
		order = append(order, "big")
	})
	env.Spawn("small", func(p *Process) {
		pool.Acquire(p, 1)
		order = append(order, "small")
	})

	env.Run(10)

	require.Equal(t, []string{"big", "small"}, order)
}

func TestMutex_FIFOAndOwnershipTransfer(t *testing.T) {
	env := NewEnv()
	mu := NewMutex(env)

	var order []string
	for _, name := range []string{"p1", "p2", "p3"} {
		name := name
		env.Spawn(name, func(p *Process) {
			mu.Lock(p)
			order = append(order, name)
			p.Delay(1)
			mu.Unlock()
		})
	}

	env.Run(10)

	require.Equal(t, []string{"p1", "p2", "p3"}, order)
}

func TestMutex_UnlockUnlocked_Panics(t *testing.T) {
	env := NewEnv()
	mu := NewMutex(env)
	require.Panics(t, func() { mu.Unlock() })
}
