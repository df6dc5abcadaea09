// Package sim provides the discrete-event simulation engine for the
// hatchery-to-slaughter poultry pipeline.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - env.go: the clock, the wakeup heap, and the cooperative process model
//   - pool.go: finite resources (setter/hatcher slots, trucks, the barn lock)
//   - shipment.go: the per-shipment state machine and the cart sub-processes
//
// # Architecture
//
// Every moving part of the pipeline is a logical process spawned on an Env:
// the shipment generator, one process per shipment, one per cart, one per
// (barn place, shipment) grow-out cycle. Processes interleave at discrete
// time points under a single logical clock; only one executes at a time, so
// the shared state in Simulation, the pools and the barn places never needs
// locking. The barn allocator additionally takes an explicit FIFO Mutex to
// serialize its read-then-decide-then-write placement sequence across
// concurrently arriving trucks.
//
// Every resource-state transition is emitted to a flow.Sink (see sim/flow)
// so an external reader can reconstruct full provenance without re-running
// the simulation.
//
// Stochastic inputs (Poisson arrivals, Beta yields, uniform dwell times) sit
// behind the Sampler interface in sampler.go; tests inject deterministic
// samplers for golden-output scenarios.
package sim
