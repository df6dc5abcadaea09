package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Validates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfig_TotalSlots(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, 56*18, cfg.TotalSetterSlots())
	require.Equal(t, 56*18, cfg.TotalHatcherSlots())
}

func TestDefaultFarms_Topology(t *testing.T) {
	farms := DefaultFarms()
	require.Len(t, farms, 36)
	for _, f := range farms {
		require.NotEmpty(t, f.Name)
		require.Positive(t, f.CapacityChicks)
		require.Equal(t, 5, f.Barns)
	}
}

func TestConfig_Validate_RejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero target", func(c *Config) { c.TargetSlaughterPerDay = 0 }},
		{"overproduction below one", func(c *Config) { c.OverproductionFactor = 0.9 }},
		{"zero shipment eggs", func(c *Config) { c.ShipmentEggs = 0 }},
		{"zero cart eggs", func(c *Config) { c.CartEggs = 0 }},
		{"zero farm car eggs", func(c *Config) { c.FarmCarEggs = 0 }},
		{"no setter slots", func(c *Config) { c.SetterMachines = 0 }},
		{"no hatcher slots", func(c *Config) { c.HatcherCartsPerMachine = 0 }},
		{"zero setter days", func(c *Config) { c.SetterDays = 0 }},
		{"inverted hatch range", func(c *Config) { c.HatchDaysMin = 5; c.HatchDaysMax = 3 }},
		{"negative sort delay", func(c *Config) { c.SortAndVaccinateHours = -1 }},
		{"zero transport days", func(c *Config) { c.TransportDays = 0 }},
		{"inverted grow-out range", func(c *Config) { c.GrowOutDaysMin = 42; c.GrowOutDaysMax = 35 }},
		{"negative cleaning days", func(c *Config) { c.CleaningDays = -1 }},
		{"zero placement poll", func(c *Config) { c.PlacementPollDays = 0 }},
		{"zero chicks per truck", func(c *Config) { c.ChicksPerTruck = 0 }},
		{"zero trucks", func(c *Config) { c.ActiveTrucks = 0 }},
		{"zero screen alpha", func(c *Config) { c.ScreenAlpha = 0 }},
		{"negative hatch beta", func(c *Config) { c.HatchBeta = -1 }},
		{"zero simulation days", func(c *Config) { c.SimulationDays = 0 }},
		{"warmup past horizon", func(c *Config) { c.WarmupDays = c.SimulationDays }},
		{"bad start date", func(c *Config) { c.StartDate = "01/01/2025" }},
		{"no farms", func(c *Config) { c.Farms = nil }},
		{"unnamed farm", func(c *Config) { c.Farms[0].Name = "" }},
		{"zero farm capacity", func(c *Config) { c.Farms[0].CapacityChicks = 0 }},
		{"zero farm barns", func(c *Config) { c.Farms[0].Barns = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_Timestamp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StartDate = "2025-01-01"

	require.Equal(t, "2025-01-01T00:00:00Z", cfg.Timestamp(0))
	require.Equal(t, "2025-01-02T12:00:00Z", cfg.Timestamp(1.5))
	require.Equal(t, "2025-02-01T00:00:00Z", cfg.Timestamp(31))
}
