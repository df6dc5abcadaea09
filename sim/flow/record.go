// Package flow defines the resource-flow event contract between the
// simulation core and its append-only log. The core treats a Sink as
// write-only; readers reconstruct full provenance (which setter and hatcher
// each cart used, which trucks carried which shipment, which barn places
// received how much) from the records alone, without re-running the
// simulation. This package stores pure data types and has no dependency on
// the sim engine.
package flow

// State is an opaque key-value snapshot of a resource before or after a
// transition. Values must be JSON-serializable.
type State map[string]any

// Record is one authoritative resource-state transition.
type Record struct {
	ShipmentID   string
	ResourceID   string
	ResourceType string
	FromState    State
	ToState      State
	Day          float64 // simulated day of the event
	EventTS      string  // calendar timestamp derived from the run's start date
	Quantity     float64
	Metadata     State // auxiliary tags: truck id, farm name, parent pair
}
