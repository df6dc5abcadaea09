package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveCapacity_HandComputed(t *testing.T) {
	// All Beta means at 0.5, so each stage doubles the requirement:
	// 1000 slaughtered -> 2000 chicks -> 4000 fertile -> 8000 eggs.
	cfg := DefaultConfig()
	cfg.TargetSlaughterPerDay = 1000
	cfg.OverproductionFactor = 1
	cfg.ScreenAlpha, cfg.ScreenBeta = 1, 1
	cfg.HatchAlpha, cfg.HatchBeta = 1, 1
	cfg.FarmAlpha, cfg.FarmBeta = 1, 1
	cfg.ShipmentEggs = 1000
	cfg.CartEggs = 100
	cfg.SetterDays = 2
	cfg.HatchDaysMin, cfg.HatchDaysMax = 1, 3

	plan := DeriveCapacity(cfg)

	require.InDelta(t, 2000, plan.ChicksPerDay, 1e-9)
	require.InDelta(t, 8000, plan.EggsPerDay, 1e-9)
	require.InDelta(t, 8, plan.ShipmentsPerDay, 1e-9)
	require.InDelta(t, 80, plan.SetterCartsPerDay, 1e-9)
	require.InDelta(t, 160, plan.SetterSlotsNeeded, 1e-9)
	require.InDelta(t, 80, plan.HatchCartsPerDay, 1e-9)
	// mean hatch dwell is 2 days
	require.InDelta(t, 160, plan.HatchSlotsNeeded, 1e-9)
}

func TestDeriveCapacity_OverproductionScalesInflowOnly(t *testing.T) {
	cfg := DefaultConfig()
	base := DeriveCapacity(cfg)

	cfg.OverproductionFactor = 2 * cfg.OverproductionFactor
	doubled := DeriveCapacity(cfg)

	require.InDelta(t, 2*base.EggsPerDay, doubled.EggsPerDay, 1e-6)
	require.InDelta(t, 2*base.ShipmentsPerDay, doubled.ShipmentsPerDay, 1e-9)
	// downstream chick demand is unaffected by the safety margin
	require.InDelta(t, base.ChicksPerDay, doubled.ChicksPerDay, 1e-9)
}

func TestDeriveCapacity_DefaultPlanShape(t *testing.T) {
	cfg := DefaultConfig()
	plan := DeriveCapacity(cfg)

	// losses at every stage mean the egg inflow exceeds the slaughter target
	require.Greater(t, plan.EggsPerDay, float64(cfg.TargetSlaughterPerDay))
	require.InDelta(t, plan.EggsPerDay/float64(cfg.ShipmentEggs), plan.ShipmentsPerDay, 1e-9)
	require.InDelta(t, plan.SetterCartsPerDay*cfg.SetterDays, plan.SetterSlotsNeeded, 1e-9)
	require.InDelta(t, plan.SetterCartsPerDay, plan.HatchCartsPerDay, 1e-9)
}
