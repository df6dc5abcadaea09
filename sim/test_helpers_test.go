package sim

// Shared fixtures for the sim package tests.

// fixedSampler returns deterministic variates: Poisson draws are constant,
// Beta draws return rate, and Uniform draws return lo + frac*(hi-lo). With
// rate=1 and frac=0 a pipeline becomes fully lossless with minimal dwell
// times, which the golden scenario tests rely on.
type fixedSampler struct {
	poisson int
	rate    float64
	frac    float64
}

func (f fixedSampler) Poisson(mean float64) int { return f.poisson }

func (f fixedSampler) Beta(alpha, beta float64) float64 { return f.rate }

func (f fixedSampler) Uniform(lo, hi float64) float64 { return lo + f.frac*(hi-lo) }

// perfectSamplers makes every stochastic draw degenerate: one shipment per
// day, 100% yield at every stage, minimum dwell times.
func perfectSamplers() *Samplers {
	fs := fixedSampler{poisson: 1, rate: 1, frac: 0}
	return &Samplers{Arrivals: fs, Screening: fs, Hatching: fs, GrowOut: fs}
}

// testConfig returns a small, fast topology used by the scenario tests:
// 10 setter and 10 hatcher slots, short dwell times, one farm with two
// 10,000-chick barn places.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.TargetSlaughterPerDay = 1000
	cfg.OverproductionFactor = 1
	cfg.ShipmentEggs = 10_000
	cfg.CartEggs = 2_000
	cfg.SetterMachines = 2
	cfg.SetterCartsPerMachine = 5
	cfg.HatcherMachines = 2
	cfg.HatcherCartsPerMachine = 5
	cfg.SetterDays = 1
	cfg.HatchDaysMin = 1
	cfg.HatchDaysMax = 2
	cfg.SortAndVaccinateHours = 6
	cfg.LoadToTransportHours = 6
	cfg.TransportDays = 0.5
	cfg.GrowOutDaysMin = 2
	cfg.GrowOutDaysMax = 3
	cfg.CleaningDays = 1
	cfg.PlacementPollDays = 0.25
	cfg.ChicksPerTruck = 60_000
	cfg.ActiveTrucks = 2
	cfg.SimulationDays = 30
	cfg.WarmupDays = 0
	cfg.Farms = []FarmSpec{{Name: "Testfarm", CapacityChicks: 20_000, Barns: 2}}
	return cfg
}
