// sim/simulation.go
//
// Simulation is the context object that owns the clock, the resource pools,
// the barn topology and the event sink for one run. Nothing here is global:
// two Simulations in the same process are fully independent.

package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/hatchsim/hatchsim/sim/flow"
)

// Simulation coordinates all processes of the hatchery-to-slaughter workflow.
type Simulation struct {
	cfg  Config
	env  *Env
	rng  *Samplers
	sink flow.Sink
	plan CapacityPlan

	setterSlots  *SlotPool
	hatcherSlots *SlotPool
	trucks       *CountPool
	barns        *BarnAllocator

	shipments   map[string]*Shipment
	shipmentSeq int
	parentPair  int

	// Always-on cohesion: prefer keeping a shipment's carts on the same
	// setter/hatcher machine. Soft preference, never a hard constraint.
	preferredSetter  map[string]string
	preferredHatcher map[string]string

	slaughter []SlaughterRecord
}

// New validates the configuration and assembles a Simulation. This is the
// only point where errors propagate out of the core; once New succeeds the
// run itself cannot fail.
func New(cfg Config, seed int64, sink flow.Sink) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if sink == nil {
		sink = flow.NopSink{}
	}
	env := NewEnv()
	s := &Simulation{
		cfg:              cfg,
		env:              env,
		rng:              NewSamplers(seed),
		sink:             sink,
		plan:             DeriveCapacity(cfg),
		setterSlots:      NewSlotPool(env, "setter", machineSlotIDs("setter", cfg.SetterMachines, cfg.SetterCartsPerMachine)),
		hatcherSlots:     NewSlotPool(env, "hatcher", machineSlotIDs("hatcher", cfg.HatcherMachines, cfg.HatcherCartsPerMachine)),
		trucks:           NewCountPool(env, "trucks", cfg.ActiveTrucks),
		barns:            NewBarnAllocator(env, cfg.Farms, cfg.PlacementPollDays),
		shipments:        make(map[string]*Shipment),
		parentPair:       1,
		preferredSetter:  make(map[string]string),
		preferredHatcher: make(map[string]string),
	}
	return s, nil
}

// machineSlotIDs pre-enumerates slot identifiers so acquire predicates can
// express machine affinity by id prefix.
func machineSlotIDs(kind string, machines, cartsPerMachine int) []string {
	ids := make([]string, 0, machines*cartsPerMachine)
	for m := 1; m <= machines; m++ {
		for c := 1; c <= cartsPerMachine; c++ {
			ids = append(ids, fmt.Sprintf("%s-%02d-cart-%02d", kind, m, c))
		}
	}
	return ids
}

// Env exposes the environment, mainly for tests.
func (s *Simulation) Env() *Env { return s.env }

// Config returns the run's configuration.
func (s *Simulation) Config() Config { return s.cfg }

// Plan returns the derived capacity plan.
func (s *Simulation) Plan() CapacityPlan { return s.plan }

// SetterSlots returns the pre-hatch incubation pool.
func (s *Simulation) SetterSlots() *SlotPool { return s.setterSlots }

// HatcherSlots returns the hatching pool.
func (s *Simulation) HatcherSlots() *SlotPool { return s.hatcherSlots }

// Trucks returns the transport capacity pool.
func (s *Simulation) Trucks() *CountPool { return s.trucks }

// Barns returns the barn placement allocator.
func (s *Simulation) Barns() *BarnAllocator { return s.barns }

// Shipments returns all shipments created during the run, keyed by id.
func (s *Simulation) Shipments() map[string]*Shipment { return s.shipments }

// SlaughterRecords returns the grow-out completions recorded so far.
func (s *Simulation) SlaughterRecords() []SlaughterRecord { return s.slaughter }

// Run starts the shipment generator and drives the event loop until the
// configured horizon.
func (s *Simulation) Run() {
	logrus.Infof("starting simulation: %.1f shipments/day, %d setter slots, %d hatcher slots, %d trucks, %d barn places",
		s.plan.ShipmentsPerDay, s.setterSlots.Capacity(), s.hatcherSlots.Capacity(), s.trucks.Capacity(), len(s.barns.Places()))
	s.env.Spawn("shipment-generator", s.runGenerator)
	s.env.Run(s.cfg.SimulationDays)
	logrus.Infof("[day %.2f] simulation ended", s.env.Now())
}

// RunUntil drives the event loop without the generator, for scenario runs
// that inject their own shipments.
func (s *Simulation) RunUntil(days float64) {
	s.env.Run(days)
}

// InjectShipment creates a shipment of the given egg quantity and spawns its
// process at the current simulated time.
func (s *Simulation) InjectShipment(eggs int) *Shipment {
	sh := &Shipment{
		ID:         fmt.Sprintf("shipment-%d", s.shipmentSeq),
		ParentPair: s.parentPair,
		Eggs:       eggs,
	}
	s.shipmentSeq++
	s.parentPair = s.parentPair%15 + 1
	s.shipments[sh.ID] = sh
	s.env.Spawn(sh.ID, func(p *Process) {
		s.runShipment(p, sh)
	})
	return sh
}

// record emits one resource-state transition to the event sink. Sink errors
// are logged and do not stop the run; persistence guarantees are the sink's
// concern, not the core's.
func (s *Simulation) record(shipmentID, resourceID, resourceType string, from, to flow.State, quantity float64, metadata flow.State) {
	r := flow.Record{
		ShipmentID:   shipmentID,
		ResourceID:   resourceID,
		ResourceType: resourceType,
		FromState:    from,
		ToState:      to,
		Day:          s.env.Now(),
		EventTS:      s.cfg.Timestamp(s.env.Now()),
		Quantity:     quantity,
		Metadata:     metadata,
	}
	if err := s.sink.Append(r); err != nil {
		logrus.Errorf("event sink append failed: %v", err)
	}
}

// Summary aggregates post-run throughput.
type Summary struct {
	// AvgSlaughterPerDay is the mean daily output over the post-warm-up
	// window. Valid only when HasAverage is true (some grow-out completed
	// after warm-up).
	AvgSlaughterPerDay float64
	HasAverage         bool
	TotalSlaughtered   int
}

// Summary computes average daily slaughter throughput after the warm-up
// window, plus the total over the whole run.
func (s *Simulation) Summary() Summary {
	total := 0
	harvested := 0
	for _, rec := range s.slaughter {
		total += rec.Quantity
		if rec.Day >= s.cfg.WarmupDays {
			harvested += rec.Quantity
		}
	}
	out := Summary{TotalSlaughtered: total}
	if harvested > 0 {
		days := s.cfg.SimulationDays - s.cfg.WarmupDays
		if days < 1 {
			days = 1
		}
		out.AvgSlaughterPerDay = float64(harvested) / days
		out.HasAverage = true
	}
	return out
}
