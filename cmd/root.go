package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hatchsim/hatchsim/sim"
	"github.com/hatchsim/hatchsim/sim/flow"
	"github.com/hatchsim/hatchsim/sim/flow/sqlitesink"
)

var (
	// CLI flags for the simulation run
	seed        int64   // Seed for all stochastic subsystems
	logLevel    string  // Log verbosity level
	configPath  string  // Optional YAML parameter file
	flowDBPath  string  // SQLite flow log path; empty discards records
	days        float64 // Simulation horizon override (days)
	warmupDays  float64 // Warm-up window override (days)
	shipmentEgg int     // Eggs per shipment override
	cartEggs    int     // Eggs per setter cart override
	trucks      int     // Active truck fleet size override
	target      int     // Target slaughter per day override
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "hatchsim",
	Short: "Discrete-event simulator for a hatchery-to-slaughter poultry pipeline",
}

// buildConfig loads the parameter file and applies flag overrides.
func buildConfig(cmd *cobra.Command) sim.Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if cmd.Flags().Changed("days") {
		cfg.SimulationDays = days
	}
	if cmd.Flags().Changed("warmup") {
		cfg.WarmupDays = warmupDays
	}
	if cmd.Flags().Changed("shipment-eggs") {
		cfg.ShipmentEggs = shipmentEgg
	}
	if cmd.Flags().Changed("cart-eggs") {
		cfg.CartEggs = cartEggs
	}
	if cmd.Flags().Changed("trucks") {
		cfg.ActiveTrucks = trucks
	}
	if cmd.Flags().Changed("target-slaughter") {
		cfg.TargetSlaughterPerDay = target
	}
	return cfg
}

// runCmd executes the simulation using parameters from the config file and
// CLI flags.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := buildConfig(cmd)

		var sink flow.Sink = flow.NopSink{}
		if flowDBPath != "" {
			dbSink, err := sqlitesink.Open(flowDBPath)
			if err != nil {
				logrus.Fatalf("Failed to open flow log: %v", err)
			}
			sink = dbSink
		}

		simulation, err := sim.New(cfg, seed, sink)
		if err != nil {
			logrus.Fatalf("Failed to build simulation: %v", err)
		}

		logrus.Infof("Starting simulation: horizon=%.0f days, warmup=%.0f days, seed=%d",
			cfg.SimulationDays, cfg.WarmupDays, seed)
		startTime := time.Now()
		simulation.Run()

		if err := sink.Close(); err != nil {
			logrus.Fatalf("Failed to close flow log: %v", err)
		}

		summary := simulation.Summary()
		fmt.Printf("Simulated %.0f days in %s\n", cfg.SimulationDays, time.Since(startTime).Round(time.Millisecond))
		fmt.Printf("Total slaughtered:        %d\n", summary.TotalSlaughtered)
		if summary.HasAverage {
			fmt.Printf("Avg slaughter per day:    %.0f (after %.0f warm-up days)\n", summary.AvgSlaughterPerDay, cfg.WarmupDays)
		} else {
			fmt.Println("Avg slaughter per day:    n/a (no grow-out completed after warm-up)")
		}

		logrus.Info("Simulation complete.")
	},
}

// planCmd prints the steady-state capacity plan for a configuration without
// running the simulation.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the derived capacity plan for a configuration",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := buildConfig(cmd)
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		plan := sim.DeriveCapacity(cfg)

		fmt.Printf("Target slaughter per day: %d\n", cfg.TargetSlaughterPerDay)
		fmt.Printf("Eggs needed per day:      %.0f\n", plan.EggsPerDay)
		fmt.Printf("Shipments per day:        %.2f\n", plan.ShipmentsPerDay)
		fmt.Printf("Setter carts per day:     %.1f\n", plan.SetterCartsPerDay)
		fmt.Printf("Setter slots needed:      %.0f (configured %d)\n", plan.SetterSlotsNeeded, cfg.TotalSetterSlots())
		fmt.Printf("Hatcher carts per day:    %.1f\n", plan.HatchCartsPerDay)
		fmt.Printf("Hatcher slots needed:     %.0f (configured %d)\n", plan.HatchSlotsNeeded, cfg.TotalHatcherSlots())
		fmt.Printf("Chicks to farms per day:  %.0f\n", plan.ChicksPerDay)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	for _, c := range []*cobra.Command{runCmd, planCmd} {
		c.Flags().Int64Var(&seed, "seed", 42, "Seed for all stochastic subsystems")
		c.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
		c.Flags().StringVar(&configPath, "config", "", "Path to a YAML parameter file")
		c.Flags().Float64Var(&days, "days", 365, "Simulation horizon in days")
		c.Flags().Float64Var(&warmupDays, "warmup", 120, "Warm-up days excluded from the throughput average")
		c.Flags().IntVar(&shipmentEgg, "shipment-eggs", 100000, "Eggs per inbound shipment")
		c.Flags().IntVar(&cartEggs, "cart-eggs", 7040, "Eggs per setter cart")
		c.Flags().IntVar(&trucks, "trucks", 120, "Active truck fleet size")
		c.Flags().IntVar(&target, "target-slaughter", 300000, "Target slaughter throughput per day")
	}
	runCmd.Flags().StringVar(&flowDBPath, "flow-db", "hatchery_flows.sqlite", "SQLite flow log path (empty discards records)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
}
