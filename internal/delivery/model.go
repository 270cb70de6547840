package delivery

import "time"

// Status is the medicine delivery pipeline. Advance moves one step at a time;
// delivered is terminal.
type Status string

const (
	StatusPlaced         Status = "placed"
	StatusPacked         Status = "packed"
	StatusShipped        Status = "shipped"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
)

var statusOrder = []Status{
	StatusPlaced, StatusPacked, StatusShipped, StatusOutForDelivery, StatusDelivered,
}

// Next returns the following pipeline step, or "" when s is terminal or
// unknown.
func (s Status) Next() Status {
	for i, step := range statusOrder {
		if step == s && i+1 < len(statusOrder) {
			return statusOrder[i+1]
		}
	}
	return ""
}

// Delivery tracks a prescription order on its way to the patient.
type Delivery struct {
	ID             string    `json:"id"`
	PatientID      string    `json:"patient_id"`
	PrescriptionID string    `json:"prescription_id"`
	Status         Status    `json:"status"`
	ETA            string    `json:"eta,omitempty"`
	Address        string    `json:"address,omitempty"`
	Timeline       []Event   `json:"timeline,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Event is one step in the delivery timeline.
type Event struct {
	ID         int64     `json:"id"`
	DeliveryID string    `json:"delivery_id"`
	Status     Status    `json:"status"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
