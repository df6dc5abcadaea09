// sim/growout.go
//
// The grow-out and cleaning cycle for one (barn place, shipment) occupancy
// entry. Occupancy bookkeeping supports partial removal from a multi-shipment
// mix; a cleaning window only opens when the place empties completely.

package sim

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/hatchsim/hatchsim/sim/flow"
)

// SlaughterRecord is the immutable completion record of one grow-out cycle,
// used for post-run aggregate reporting.
type SlaughterRecord struct {
	Day        float64
	ShipmentID string
	Quantity   int
	Farm       string
}

// runGrowOut holds the placed amount in the barn place for a sampled grow-out
// duration, resolves survival, releases the occupancy and, if the place
// empties, runs its cleaning window before it reopens.
func (s *Simulation) runGrowOut(p *Process, shipmentID string, amount int, place *BarnPlace) {
	p.Delay(s.rng.GrowOut.Uniform(s.cfg.GrowOutDaysMin, s.cfg.GrowOutDaysMax))

	survivalRate := s.rng.GrowOut.Beta(s.cfg.FarmAlpha, s.cfg.FarmBeta)
	survivors := int(math.Round(float64(amount) * survivalRate))
	losses := amount - survivors

	s.record(shipmentID, place.ID, "grow_out",
		flow.State{"status": "growing"},
		flow.State{"survivors": survivors, "losses": losses},
		float64(survivors),
		flow.State{"farm": place.Farm},
	)
	s.record(shipmentID, place.ID, "slaughter",
		flow.State{"status": "grown"},
		flow.State{"status": "shipped"},
		float64(survivors),
		flow.State{"farm": place.Farm},
	)
	s.slaughter = append(s.slaughter, SlaughterRecord{
		Day:        s.env.Now(),
		ShipmentID: shipmentID,
		Quantity:   survivors,
		Farm:       place.Farm,
	})

	before := place.Mix()
	removed := place.Decrement(shipmentID, amount)
	s.record(shipmentID, place.ID, "barn",
		mixState(before),
		mixState(place.Mix()),
		float64(removed),
		flow.State{"farm": place.Farm, "status": "removal"},
	)

	if place.Occupied == 0 {
		// Last occupant left: the place is unavailable until cleaning ends.
		place.CleaningUntil = s.env.Now() + s.cfg.CleaningDays
		s.record(shipmentID, place.ID, "farm_place",
			flow.State{"status": "occupied"},
			flow.State{"status": "cleaning"},
			float64(removed),
			flow.State{"farm": place.Farm, "removed_shipment": shipmentID, "removed_amount": removed},
		)
		p.Delay(s.cfg.CleaningDays)
		place.CleaningUntil = 0
		s.record(shipmentID, place.ID, "farm_place",
			flow.State{"status": "cleaning"},
			flow.State{"status": "open"},
			0,
			flow.State{"farm": place.Farm},
		)
		logrus.Debugf("[day %.2f] %s reopened after cleaning", s.env.Now(), place.ID)
		return
	}

	// Other shipments still resident: no cleaning window, immediately
	// eligible for further placement.
	s.record(shipmentID, place.ID, "farm_place",
		flow.State{"status": "occupied"},
		flow.State{"status": "partial_release"},
		float64(removed),
		flow.State{
			"farm":               place.Farm,
			"remaining_capacity": place.RemainingCapacity(),
			"mix":                mixState(place.Mix()),
			"removed_shipment":   shipmentID,
			"removed_amount":     removed,
		},
	)
}
