package flow

// Sink receives resource-flow records in event order. Implementations may
// buffer; Close flushes whatever is pending. Durability between flushes is
// explicitly out of scope.
type Sink interface {
	Append(Record) error
	Close() error
}

// MemorySink retains every record in order. It is the test double the
// scenario tests assert sequences against.
type MemorySink struct {
	Records []Record
}

// Append stores the record.
func (m *MemorySink) Append(r Record) error {
	m.Records = append(m.Records, r)
	return nil
}

// Close is a no-op.
func (m *MemorySink) Close() error { return nil }

// ByType returns the retained records with the given resource type, in order.
func (m *MemorySink) ByType(resourceType string) []Record {
	var out []Record
	for _, r := range m.Records {
		if r.ResourceType == resourceType {
			out = append(out, r)
		}
	}
	return out
}

// ByShipment returns the retained records for one shipment, in order.
func (m *MemorySink) ByShipment(shipmentID string) []Record {
	var out []Record
	for _, r := range m.Records {
		if r.ShipmentID == shipmentID {
			out = append(out, r)
		}
	}
	return out
}

// NopSink discards every record.
type NopSink struct{}

// Append discards the record.
func (NopSink) Append(Record) error { return nil }

// Close is a no-op.
func (NopSink) Close() error { return nil }
