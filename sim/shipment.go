// sim/shipment.go
//
// The per-shipment process: split into carts, run every cart through setter
// and hatcher concurrently, join, then sort, load and truck the chicks out to
// the barns. Quantities are rounded to the nearest integer at each stochastic
// split; the rounding error is tolerated, never corrected.

package sim

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hatchsim/hatchsim/sim/flow"
)

// Shipment is one inbound batch of eggs tracked end to end. Counters
// accumulate as its carts complete stages; after its last truck departs the
// shipment simply becomes inert.
type Shipment struct {
	ID         string
	ParentPair int
	Eggs       int
	Carts      []*Cart

	Discarded   int
	Fertile     int
	Chicks      int
	HatchLosses int

	// Aggregated is set once the cart barrier has passed and the totals
	// above are final.
	Aggregated bool
	// Delivered is the chick quantity handed to the barn allocator.
	Delivered int
}

// Cart is a shipment sub-unit sized to one setter slot. Slot ids stay empty
// until the corresponding pool lease is taken.
type Cart struct {
	ID          string
	SetterSlot  string
	HatcherSlot string

	Eggs      int
	Discarded int
	Fertile   int
	Chicks    int
	Losses    int
}

// machinePrefix reduces a slot id like "setter-07-cart-12" to its machine
// part "setter-07", the granularity the affinity preference works at.
func machinePrefix(slotID string) string {
	if i := strings.Index(slotID, "-cart"); i > 0 {
		return slotID[:i]
	}
	return slotID
}

// runShipment sequences one shipment through every pipeline stage.
func (s *Simulation) runShipment(p *Process, sh *Shipment) {
	farmCars := (sh.Eggs + s.cfg.FarmCarEggs - 1) / s.cfg.FarmCarEggs
	s.record(sh.ID, "inventory", "inventory",
		nil,
		flow.State{"status": "arrived"},
		float64(sh.Eggs),
		flow.State{"parent_pair": fmt.Sprintf("parent-pair-%d", sh.ParentPair), "farm_cars": farmCars},
	)
	logrus.Debugf("[day %.2f] %s arrived with %d eggs", s.env.Now(), sh.ID, sh.Eggs)

	// Split into cart-sized chunks; the last chunk may be smaller.
	var cartProcs []*Process
	remaining := sh.Eggs
	for index := 1; remaining > 0; index++ {
		cartEggs := s.cfg.CartEggs
		if cartEggs > remaining {
			cartEggs = remaining
		}
		cart := &Cart{
			ID:   fmt.Sprintf("cart-%s-%02d", sh.ID, index),
			Eggs: cartEggs,
		}
		sh.Carts = append(sh.Carts, cart)
		cartProcs = append(cartProcs, s.env.Spawn(cart.ID, func(cp *Process) {
			s.runCart(cp, sh, cart)
		}))
		remaining -= cartEggs
	}

	// Barrier: the shipment suspends until all cart sub-processes complete.
	p.JoinAll(cartProcs...)

	for _, cart := range sh.Carts {
		sh.Discarded += cart.Discarded
		sh.Fertile += cart.Fertile
		sh.Chicks += cart.Chicks
		sh.HatchLosses += cart.Losses
	}
	sh.Aggregated = true

	s.record(sh.ID, "inventory", "inventory",
		flow.State{"status": "arrived"},
		flow.State{"status": "to_pre_hatch", "carts": len(sh.Carts)},
		float64(sh.Eggs),
		flow.State{"parent_pair": fmt.Sprintf("parent-pair-%d", sh.ParentPair)},
	)
	s.record(sh.ID, "xray", "process",
		flow.State{"status": "before"},
		flow.State{"status": "discarded"},
		float64(sh.Discarded), nil,
	)
	s.record(sh.ID, "hatch_room", "process",
		flow.State{"fertile": sh.Fertile + sh.Discarded},
		flow.State{"fertile": sh.Fertile},
		float64(sh.Fertile), nil,
	)
	s.record(sh.ID, "hatch_room", "process",
		flow.State{"fertile": sh.Fertile},
		flow.State{"chicks": sh.Chicks, "losses": sh.HatchLosses},
		float64(sh.Chicks), nil,
	)

	// Zero-yield shipments terminate here; an allowed edge case, not an error.
	if sh.Chicks <= 0 {
		s.record(sh.ID, "hatch_room", "process",
			flow.State{"status": "empty"}, nil, 0, nil,
		)
		return
	}

	p.Delay(s.cfg.SortAndVaccinateHours / 24)
	s.record(sh.ID, "processing", "process",
		flow.State{"status": "pre_processing"},
		flow.State{"status": "processed"},
		float64(sh.Chicks), nil,
	)

	p.Delay(s.cfg.LoadToTransportHours / 24)
	trucksNeeded := (sh.Chicks + s.cfg.ChicksPerTruck - 1) / s.cfg.ChicksPerTruck
	s.record(sh.ID, "transport_loading", "logistics",
		flow.State{"status": "scheduled"},
		flow.State{"trucks": trucksNeeded},
		float64(sh.Chicks), nil,
	)

	// Trucks run sequentially within a shipment; the global truck pool is
	// the only serialization point across shipments.
	remainingChicks := sh.Chicks
	for truckIdx := 1; remainingChicks > 0; truckIdx++ {
		load := s.cfg.ChicksPerTruck
		if load > remainingChicks {
			load = remainingChicks
		}
		remainingChicks -= load

		s.trucks.Acquire(p, 1)
		truckID := fmt.Sprintf("%s-truck-%02d", sh.ID, truckIdx)
		s.record(sh.ID, truckID, "truck",
			flow.State{"status": "loading"},
			flow.State{"status": "in_transit"},
			float64(load), nil,
		)
		p.Delay(s.cfg.TransportDays)
		s.record(sh.ID, truckID, "truck",
			flow.State{"status": "in_transit"},
			flow.State{"status": "arrived"},
			float64(load), nil,
		)
		s.placeTruck(p, sh, truckID, load)
		s.trucks.Release(1)
	}
}

// runCart takes one cart through incubation and hatching, recording each
// slot lease and release.
func (s *Simulation) runCart(p *Process, sh *Shipment, cart *Cart) {
	slotID := s.setterSlots.Acquire(p, s.affinity(s.preferredSetter[sh.ID]))
	cart.SetterSlot = slotID
	if _, ok := s.preferredSetter[sh.ID]; !ok {
		s.preferredSetter[sh.ID] = machinePrefix(slotID)
	}
	s.record(sh.ID, slotID, "setter_slot",
		flow.State{"status": "empty"},
		flow.State{"cart_id": cart.ID, "eggs": cart.Eggs},
		float64(cart.Eggs), nil,
	)

	p.Delay(s.cfg.SetterDays)
	s.setterSlots.Release(slotID)
	s.record(sh.ID, slotID, "setter_slot",
		flow.State{"cart_id": cart.ID, "eggs": cart.Eggs},
		flow.State{"status": "released"},
		float64(cart.Eggs), nil,
	)

	// Candling/x-ray screen: fertile vs discarded.
	passRate := s.rng.Screening.Beta(s.cfg.ScreenAlpha, s.cfg.ScreenBeta)
	cart.Fertile = int(math.Round(float64(cart.Eggs) * passRate))
	cart.Discarded = cart.Eggs - cart.Fertile

	hatchSlotID := s.hatcherSlots.Acquire(p, s.affinity(s.preferredHatcher[sh.ID]))
	cart.HatcherSlot = hatchSlotID
	if _, ok := s.preferredHatcher[sh.ID]; !ok {
		s.preferredHatcher[sh.ID] = machinePrefix(hatchSlotID)
	}
	s.record(sh.ID, hatchSlotID, "hatcher_slot",
		flow.State{"status": "empty"},
		flow.State{"cart_id": cart.ID, "fertile": cart.Fertile},
		float64(cart.Fertile), nil,
	)

	p.Delay(s.rng.Hatching.Uniform(s.cfg.HatchDaysMin, s.cfg.HatchDaysMax))

	hatchRate := s.rng.Hatching.Beta(s.cfg.HatchAlpha, s.cfg.HatchBeta)
	cart.Chicks = int(math.Round(float64(cart.Fertile) * hatchRate))
	cart.Losses = cart.Fertile - cart.Chicks

	s.hatcherSlots.Release(hatchSlotID)
	s.record(sh.ID, hatchSlotID, "hatcher_slot",
		flow.State{"cart_id": cart.ID, "fertile": cart.Fertile},
		flow.State{"chicks": cart.Chicks, "losses": cart.Losses},
		float64(cart.Chicks), nil,
	)
}

// affinity turns a preferred machine prefix into a slot predicate. An empty
// preference means no predicate.
func (s *Simulation) affinity(preferred string) SlotPredicate {
	if preferred == "" {
		return nil
	}
	return func(slotID string) bool {
		return strings.HasPrefix(slotID, preferred)
	}
}

// placeTruck hands one truck's load to the barn allocator, records the
// occupancy delta per affected place, and spawns a grow-out cycle per
// placement.
func (s *Simulation) placeTruck(p *Process, sh *Shipment, truckID string, load int) {
	placements := s.barns.Place(p, sh.ID, load)
	sh.Delivered += load
	for _, pl := range placements {
		s.record(sh.ID, pl.Place.ID, "barn",
			mixState(pl.Before),
			mixState(pl.After),
			float64(pl.Amount),
			flow.State{"farm": pl.Place.Farm, "truck_id": truckID, "remaining_capacity": pl.Place.RemainingCapacity()},
		)
		place, amount := pl.Place, pl.Amount
		s.env.Spawn(fmt.Sprintf("growout-%s-%s", sh.ID, place.ID), func(gp *Process) {
			s.runGrowOut(gp, sh.ID, amount, place)
		})
	}
}

// mixState converts an occupant mapping into a sink state snapshot.
func mixState(mix map[string]int) flow.State {
	st := make(flow.State, len(mix))
	for k, v := range mix {
		st[k] = v
	}
	return st
}
