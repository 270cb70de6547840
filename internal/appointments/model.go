package appointments

import "time"

// Status values for the appointment lifecycle. Transitions are one-way per
// action: upcoming→completed, upcoming→cancelled, and reschedule changes the
// date while forcing the status back to upcoming. Nothing leaves completed or
// cancelled.
type Status string

const (
	StatusUpcoming    Status = "upcoming"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusRescheduled Status = "rescheduled"
)

// Type distinguishes video consultations from in-person visits.
type Type string

const (
	TypeOnline  Type = "online"
	TypeOffline Type = "offline"
)

// PaymentStatus is paid only when a non-empty payment id is attached; both
// are written in the same insert so a half-paid booking can never be
// reported as confirmed.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Appointment is the persisted booking row. Field names are shared with the
// dashboards and must stay stable.
type Appointment struct {
	ID            string        `json:"id"`
	PatientID     string        `json:"patient_id"`
	DoctorID      string        `json:"doctor_id"`
	Date          string        `json:"date"`
	Time          string        `json:"time"`
	Type          Type          `json:"type"`
	Status        Status        `json:"status"`
	MeetLink      string        `json:"meet_link,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PaymentID     string        `json:"payment_id,omitempty"`
	OrderID       string        `json:"order_id,omitempty"`
	Amount        int64         `json:"amount,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// PaymentOrder is the transient handle returned by the gateway. It is never
// persisted on its own; the id is folded into the appointment on finalize.
type PaymentOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CheckoutIntent is what the booking endpoint returns when a payment is
// required before finalize. The dashboard feeds it to the payment widget.
type CheckoutIntent struct {
	OrderID     string `json:"order_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	KeyID       string `json:"key_id,omitempty"`
}

// BookingOutcome is the result of initiating a booking: either the
// appointment was finalized immediately (zero-fee doctor) or a checkout
// intent is pending the external widget's callback.
type BookingOutcome struct {
	Appointment *Appointment    `json:"appointment,omitempty"`
	Checkout    *CheckoutIntent `json:"checkout,omitempty"`
}
