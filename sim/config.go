// sim/config.go
//
// The immutable parameter set that drives a simulation run. All validation
// happens here, before any simulated time advances; the engine itself never
// re-checks configuration values.

package sim

import (
	"fmt"
	"time"
)

// FarmSpec is the static definition of a grow-out farm and its chick capacity.
// Capacity splits evenly across the farm's barn places, with the remainder
// spread one chick at a time over the leading places.
type FarmSpec struct {
	Name           string `yaml:"name"`
	CapacityChicks int    `yaml:"capacity_chicks"`
	Barns          int    `yaml:"barns"`
}

// Config parameterizes the whole pipeline: throughput target, batch sizing,
// machine topology, stage durations, yield distributions, logistics capacity,
// farm topology and the simulation horizon. Durations are in days unless the
// field name says otherwise.
type Config struct {
	TargetSlaughterPerDay int     `yaml:"target_slaughter_per_day"`
	OverproductionFactor  float64 `yaml:"overproduction_factor"`

	ShipmentEggs int `yaml:"shipment_eggs"`
	FarmCarEggs  int `yaml:"farm_car_eggs"`
	CartEggs     int `yaml:"cart_eggs"`

	SetterMachines         int `yaml:"setter_machines"`
	SetterCartsPerMachine  int `yaml:"setter_carts_per_machine"`
	HatcherMachines        int `yaml:"hatcher_machines"`
	HatcherCartsPerMachine int `yaml:"hatcher_carts_per_machine"`

	SetterDays            float64 `yaml:"setter_days"`
	HatchDaysMin          float64 `yaml:"hatch_days_min"`
	HatchDaysMax          float64 `yaml:"hatch_days_max"`
	SortAndVaccinateHours float64 `yaml:"sort_and_vaccinate_hours"`
	LoadToTransportHours  float64 `yaml:"load_to_transport_hours"`
	TransportDays         float64 `yaml:"transport_days"`
	GrowOutDaysMin        float64 `yaml:"grow_out_days_min"`
	GrowOutDaysMax        float64 `yaml:"grow_out_days_max"`
	CleaningDays          float64 `yaml:"cleaning_days"`
	PlacementPollDays     float64 `yaml:"placement_poll_days"`

	ChicksPerTruck int `yaml:"chicks_per_truck"`
	ActiveTrucks   int `yaml:"active_trucks"`

	// Beta shape parameters per yield stage: candling/x-ray screening,
	// hatching, and grow-out survival.
	ScreenAlpha float64 `yaml:"screen_alpha"`
	ScreenBeta  float64 `yaml:"screen_beta"`
	HatchAlpha  float64 `yaml:"hatch_alpha"`
	HatchBeta   float64 `yaml:"hatch_beta"`
	FarmAlpha   float64 `yaml:"farm_alpha"`
	FarmBeta    float64 `yaml:"farm_beta"`

	SimulationDays float64 `yaml:"simulation_days"`
	WarmupDays     float64 `yaml:"warmup_days"`

	// StartDate anchors simulated day 0 to a calendar date (YYYY-MM-DD) for
	// the timestamps written to the event sink.
	StartDate string `yaml:"start_date"`

	Farms []FarmSpec `yaml:"farms"`
}

// DefaultConfig returns the production parameter set.
func DefaultConfig() Config {
	return Config{
		TargetSlaughterPerDay: 300_000,
		OverproductionFactor:  1.05,

		ShipmentEggs: 100_000,
		FarmCarEggs:  3_520,
		CartEggs:     7_040,

		SetterMachines:         56,
		SetterCartsPerMachine:  18,
		HatcherMachines:        56,
		HatcherCartsPerMachine: 18,

		SetterDays:            24,
		HatchDaysMin:          3,
		HatchDaysMax:          5,
		SortAndVaccinateHours: 6,
		LoadToTransportHours:  6,
		TransportDays:         1,
		GrowOutDaysMin:        35,
		GrowOutDaysMax:        42,
		CleaningDays:          12,
		PlacementPollDays:     0.5,

		ChicksPerTruck: 57_600,
		ActiveTrucks:   120,

		ScreenAlpha: 85,
		ScreenBeta:  15,
		HatchAlpha:  95,
		HatchBeta:   5,
		FarmAlpha:   92,
		FarmBeta:    8,

		SimulationDays: 365,
		WarmupDays:     120,

		StartDate: "2025-01-01",

		Farms: DefaultFarms(),
	}
}

// DefaultFarms returns the configured grow-out farm capacities (net
// placement, converted to chicks).
func DefaultFarms() []FarmSpec {
	specs := []struct {
		name     string
		capacity int
	}{
		{"Kisvarsany", 142_420},
		{"Gavavencsello", 202_910},
		{"Foldes", 279_000},
		{"Kaba", 444_000},
		{"Nyiribrony", 82_700},
		{"Aranyosapati", 312_000},
		{"Blhaza_VI", 312_000},
		{"Blhaza_III", 260_000},
		{"Blhaza_II", 260_000},
		{"Blhaza_I", 312_000},
		{"Blhaza_V", 312_000},
		{"IstvanMajor_B_IV", 260_000},
		{"Levelek_I", 312_000},
		{"Levelek_II", 312_000},
		{"Nyirmada", 260_000},
		{"Hodmezovasarhely_Nanas", 207_000},
		{"Tiszakarad", 182_000},
		{"Sarospatak", 199_000},
		{"Pusztadobos", 145_500},
		{"Laskod", 312_000},
		{"Ibrany", 260_000},
		{"Petnehaza_I", 260_000},
		{"Petnehaza_II", 260_000},
		{"Fabianhaza", 260_000},
		{"Nyirkarasz_I", 312_000},
		{"Nyirkercs_I", 312_000},
		{"Cigand_I", 260_000},
		{"Nyirkercs_II", 312_000},
		{"Vojka_Farm_Veke", 220_000},
		{"Nyirkercs_III", 312_000},
		{"Eperjeske", 312_000},
		{"Nagyhalasz", 312_000},
		{"Nagyecsed", 286_000},
		{"Beregdaroc", 312_000},
		{"Cigand_II", 312_000},
		{"Kantorjanosi", 312_000},
	}
	farms := make([]FarmSpec, 0, len(specs))
	for _, f := range specs {
		farms = append(farms, FarmSpec{Name: f.name, CapacityChicks: f.capacity, Barns: 5})
	}
	return farms
}

// TotalSetterSlots returns the pool capacity for pre-hatch incubation.
func (c Config) TotalSetterSlots() int {
	return c.SetterMachines * c.SetterCartsPerMachine
}

// TotalHatcherSlots returns the pool capacity for hatching.
func (c Config) TotalHatcherSlots() int {
	return c.HatcherMachines * c.HatcherCartsPerMachine
}

// Validate rejects configurations that cannot drive a simulation. It is the
// only failure surface of the core: every later stochastic outcome, including
// zero-yield shipments and permanent pool starvation, is a valid state.
func (c Config) Validate() error {
	if c.TargetSlaughterPerDay <= 0 {
		return fmt.Errorf("target_slaughter_per_day must be positive, got %d", c.TargetSlaughterPerDay)
	}
	if c.OverproductionFactor < 1 {
		return fmt.Errorf("overproduction_factor must be >= 1, got %g", c.OverproductionFactor)
	}
	if c.ShipmentEggs <= 0 {
		return fmt.Errorf("shipment_eggs must be positive, got %d", c.ShipmentEggs)
	}
	if c.CartEggs <= 0 {
		return fmt.Errorf("cart_eggs must be positive, got %d", c.CartEggs)
	}
	if c.FarmCarEggs <= 0 {
		return fmt.Errorf("farm_car_eggs must be positive, got %d", c.FarmCarEggs)
	}
	if c.TotalSetterSlots() <= 0 {
		return fmt.Errorf("setter topology yields no slots (%d machines x %d carts)", c.SetterMachines, c.SetterCartsPerMachine)
	}
	if c.TotalHatcherSlots() <= 0 {
		return fmt.Errorf("hatcher topology yields no slots (%d machines x %d carts)", c.HatcherMachines, c.HatcherCartsPerMachine)
	}
	if c.SetterDays <= 0 {
		return fmt.Errorf("setter_days must be positive, got %g", c.SetterDays)
	}
	if c.HatchDaysMin <= 0 || c.HatchDaysMax < c.HatchDaysMin {
		return fmt.Errorf("hatch day range [%g, %g] is invalid", c.HatchDaysMin, c.HatchDaysMax)
	}
	if c.SortAndVaccinateHours < 0 || c.LoadToTransportHours < 0 {
		return fmt.Errorf("processing delays must be non-negative")
	}
	if c.TransportDays <= 0 {
		return fmt.Errorf("transport_days must be positive, got %g", c.TransportDays)
	}
	if c.GrowOutDaysMin <= 0 || c.GrowOutDaysMax < c.GrowOutDaysMin {
		return fmt.Errorf("grow-out day range [%g, %g] is invalid", c.GrowOutDaysMin, c.GrowOutDaysMax)
	}
	if c.CleaningDays < 0 {
		return fmt.Errorf("cleaning_days must be non-negative, got %g", c.CleaningDays)
	}
	if c.PlacementPollDays <= 0 {
		return fmt.Errorf("placement_poll_days must be positive, got %g", c.PlacementPollDays)
	}
	if c.ChicksPerTruck <= 0 {
		return fmt.Errorf("chicks_per_truck must be positive, got %d", c.ChicksPerTruck)
	}
	if c.ActiveTrucks <= 0 {
		return fmt.Errorf("active_trucks must be positive, got %d", c.ActiveTrucks)
	}
	for _, shape := range []struct {
		stage       string
		alpha, beta float64
	}{
		{"screen", c.ScreenAlpha, c.ScreenBeta},
		{"hatch", c.HatchAlpha, c.HatchBeta},
		{"farm", c.FarmAlpha, c.FarmBeta},
	} {
		if shape.alpha <= 0 || shape.beta <= 0 {
			return fmt.Errorf("%s beta shape parameters must be positive, got alpha=%g beta=%g", shape.stage, shape.alpha, shape.beta)
		}
	}
	if c.SimulationDays <= 0 {
		return fmt.Errorf("simulation_days must be positive, got %g", c.SimulationDays)
	}
	if c.WarmupDays < 0 || c.WarmupDays >= c.SimulationDays {
		return fmt.Errorf("warmup_days %g must be within [0, simulation_days)", c.WarmupDays)
	}
	if _, err := c.startTime(); err != nil {
		return fmt.Errorf("start_date: %w", err)
	}
	if len(c.Farms) == 0 {
		return fmt.Errorf("at least one farm is required")
	}
	for _, f := range c.Farms {
		if f.Name == "" {
			return fmt.Errorf("farm with empty name")
		}
		if f.CapacityChicks <= 0 {
			return fmt.Errorf("farm %s: capacity_chicks must be positive, got %d", f.Name, f.CapacityChicks)
		}
		if f.Barns <= 0 {
			return fmt.Errorf("farm %s: barns must be positive, got %d", f.Name, f.Barns)
		}
	}
	return nil
}

func (c Config) startTime() (time.Time, error) {
	return time.Parse("2006-01-02", c.StartDate)
}

// Timestamp converts a simulated day offset into the calendar timestamp
// recorded in the event sink. Config must have been validated first.
func (c Config) Timestamp(day float64) string {
	start, err := c.startTime()
	if err != nil {
		return ""
	}
	return start.Add(time.Duration(day * 24 * float64(time.Hour))).UTC().Format(time.RFC3339)
}
