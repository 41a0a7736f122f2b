package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds carried on the record events queue.
const (
	EventRecordUpsert = "record_upsert"
	EventRecordDelete = "record_delete"
	EventTenantReset  = "tenant_reset"
)

// RecordEvent is a lightweight change notification for the reporting
// mirror. It carries the tenant and record identifiers only; the consumer
// reads the full row from the tenant's durable file.
type RecordEvent struct {
	Kind      string    `json:"kind"`
	Tenant    string    `json:"tenant"`
	RecordID  string    `json:"record_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordEvent creates an event stamped with the current time.
func NewRecordEvent(kind, tenant, recordID string) *RecordEvent {
	return &RecordEvent{
		Kind:      kind,
		Tenant:    tenant,
		RecordID:  recordID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON creates an event from JSON bytes
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
