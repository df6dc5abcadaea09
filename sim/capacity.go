// sim/capacity.go
//
// Closed-form steady-state sizing. The shipment generator only consumes
// ShipmentsPerDay; the rest is informational and surfaced by the `plan` CLI
// command.

package sim

// CapacityPlan is the derived sizing information for facilities and logistics
// given a configuration.
type CapacityPlan struct {
	ShipmentsPerDay   float64
	EggsPerDay        float64
	SetterCartsPerDay float64
	SetterSlotsNeeded float64
	HatchCartsPerDay  float64
	HatchSlotsNeeded  float64
	ChicksPerDay      float64
}

// DeriveCapacity back-solves from the target slaughter throughput through the
// mean of each Beta yield stage to the egg inflow and slot counts required to
// sustain it.
func DeriveCapacity(cfg Config) CapacityPlan {
	farmSurvivalMean := cfg.FarmAlpha / (cfg.FarmAlpha + cfg.FarmBeta)
	hatchSuccessMean := cfg.HatchAlpha / (cfg.HatchAlpha + cfg.HatchBeta)
	screenPassMean := cfg.ScreenAlpha / (cfg.ScreenAlpha + cfg.ScreenBeta)

	chicksToFarms := float64(cfg.TargetSlaughterPerDay) / farmSurvivalMean
	eggsAfterHatch := chicksToFarms / hatchSuccessMean
	eggsNeeded := eggsAfterHatch / screenPassMean * cfg.OverproductionFactor

	setterCartsPerDay := eggsNeeded / float64(cfg.CartEggs)
	// carts carry through the process one-to-one
	hatchCartsPerDay := setterCartsPerDay

	hatchDaysMean := (cfg.HatchDaysMin + cfg.HatchDaysMax) / 2

	return CapacityPlan{
		ShipmentsPerDay:   eggsNeeded / float64(cfg.ShipmentEggs),
		EggsPerDay:        eggsNeeded,
		SetterCartsPerDay: setterCartsPerDay,
		SetterSlotsNeeded: setterCartsPerDay * cfg.SetterDays,
		HatchCartsPerDay:  hatchCartsPerDay,
		HatchSlotsNeeded:  hatchCartsPerDay * hatchDaysMean,
		ChicksPerDay:      chicksToFarms,
	}
}
