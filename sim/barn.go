// sim/barn.go
//
// Barn topology and truck placement. A barn place can host several shipments
// at once; the allocator distributes one truck's load across places as a
// single atomic-looking occupancy delta per place, serialized under a global
// lock so concurrent truck arrivals never double-book freed capacity.

package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// BarnPlace is one physical housing unit with finite chick capacity. The sum
// of occupant quantities never exceeds Capacity, and a place whose cleaning
// window has not elapsed accepts no new occupants.
type BarnPlace struct {
	Farm          string
	ID            string
	Capacity      int
	Occupants     map[string]int // shipment id -> resident quantity
	Occupied      int
	CleaningUntil float64
}

// RemainingCapacity returns the free headroom of the place.
func (b *BarnPlace) RemainingCapacity() int {
	if b.Occupied >= b.Capacity {
		return 0
	}
	return b.Capacity - b.Occupied
}

// Add registers amount chicks of a shipment in the place.
func (b *BarnPlace) Add(shipmentID string, amount int) {
	b.Occupants[shipmentID] += amount
	b.Occupied += amount
}

// Decrement removes up to amount chicks of a shipment from the place and
// returns the quantity actually removed. Removing part of a multi-shipment
// mix leaves the other occupants untouched.
func (b *BarnPlace) Decrement(shipmentID string, amount int) int {
	current, ok := b.Occupants[shipmentID]
	if !ok {
		return 0
	}
	removal := amount
	if removal > current {
		removal = current
	}
	if removal == current {
		delete(b.Occupants, shipmentID)
	} else {
		b.Occupants[shipmentID] = current - removal
	}
	b.Occupied -= removal
	if b.Occupied < 0 {
		b.Occupied = 0
	}
	return removal
}

// Mix returns a copy of the occupant mapping.
func (b *BarnPlace) Mix() map[string]int {
	out := make(map[string]int, len(b.Occupants))
	for k, v := range b.Occupants {
		out[k] = v
	}
	return out
}

// Placement is one applied (barn place, amount) slice of a truck's load,
// with occupant snapshots from before and after the delta.
type Placement struct {
	Place  *BarnPlace
	Amount int
	Before map[string]int
	After  map[string]int
}

// BarnAllocator owns the barn topology and the global placement lock.
type BarnAllocator struct {
	env    *Env
	lock   *Mutex
	places []*BarnPlace
	poll   float64 // days between retries when no capacity is eligible
}

// NewBarnAllocator expands the farm specs into evenly split barn places.
// Remainder capacity goes one chick at a time to a farm's leading places.
func NewBarnAllocator(env *Env, farms []FarmSpec, pollDays float64) *BarnAllocator {
	var places []*BarnPlace
	for _, spec := range farms {
		base := spec.CapacityChicks / spec.Barns
		extra := spec.CapacityChicks % spec.Barns
		for i := 0; i < spec.Barns; i++ {
			capacity := base
			if i < extra {
				capacity++
			}
			places = append(places, &BarnPlace{
				Farm:      spec.Name,
				ID:        fmt.Sprintf("%s-barn-%02d", spec.Name, i+1),
				Capacity:  capacity,
				Occupants: make(map[string]int),
			})
		}
	}
	return &BarnAllocator{env: env, lock: NewMutex(env), places: places, poll: pollDays}
}

// Places returns the barn topology.
func (a *BarnAllocator) Places() []*BarnPlace {
	return a.places
}

// eligible returns the placement priority order at the given instant:
// empty places first, then places already hosting this shipment, then places
// hosting other shipments with free headroom. Places inside a cleaning window
// never appear.
func (a *BarnAllocator) eligible(now float64, shipmentID string) []*BarnPlace {
	var empty, own, shared []*BarnPlace
	for _, pl := range a.places {
		if now < pl.CleaningUntil || pl.RemainingCapacity() <= 0 {
			continue
		}
		switch {
		case pl.Occupied == 0:
			empty = append(empty, pl)
		case pl.Occupants[shipmentID] > 0:
			own = append(own, pl)
		default:
			shared = append(shared, pl)
		}
	}
	ordered := make([]*BarnPlace, 0, len(empty)+len(own)+len(shared))
	ordered = append(ordered, empty...)
	ordered = append(ordered, own...)
	return append(ordered, shared...)
}

// Place distributes one truck's load across eligible barn places. The whole
// decide-and-apply sequence for a pass runs under the global lock; if a pass
// cannot absorb the full quantity the allocator unlocks, waits a poll
// interval for grow-out completions or cleaning windows to free capacity, and
// recomputes the eligibility order. The amounts of the returned placements
// always sum to qty exactly; chicks are never partially dropped.
func (a *BarnAllocator) Place(p *Process, shipmentID string, qty int) []Placement {
	var placements []Placement
	remaining := qty
	for remaining > 0 {
		a.lock.Lock(p)
		now := a.env.Now()
		for _, pl := range a.eligible(now, shipmentID) {
			if remaining == 0 {
				break
			}
			portion := pl.RemainingCapacity()
			if portion > remaining {
				portion = remaining
			}
			if portion <= 0 {
				continue
			}
			before := pl.Mix()
			pl.Add(shipmentID, portion)
			placements = append(placements, Placement{
				Place:  pl,
				Amount: portion,
				Before: before,
				After:  pl.Mix(),
			})
			remaining -= portion
		}
		a.lock.Unlock()
		if remaining > 0 {
			logrus.Debugf("[day %.2f] %s: %d chicks waiting for barn capacity", now, shipmentID, remaining)
			p.Delay(a.poll)
		}
	}
	return placements
}
