package events

import "time"

// Event types recorded by the appointment lifecycle coordinator.
const (
	TypeAppointmentCreated     = "appointment.created"
	TypeAppointmentCancelled   = "appointment.cancelled"
	TypeAppointmentRescheduled = "appointment.rescheduled"
	TypeAppointmentCompleted   = "appointment.completed"
	TypePaymentCaptured        = "payment.captured"
)

// AppointmentEventV1 is the payload for all appointment lifecycle events.
type AppointmentEventV1 struct {
	EventID       string    `json:"event_id"`
	AppointmentID string    `json:"appointment_id"`
	PatientID     string    `json:"patient_id"`
	DoctorID      string    `json:"doctor_id"`
	DoctorName    string    `json:"doctor_name,omitempty"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status,omitempty"`
	Amount        int64     `json:"amount,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// PaymentCapturedV1 is the payload recorded when the gateway callback
// finalizes a paid booking.
type PaymentCapturedV1 struct {
	EventID       string    `json:"event_id"`
	AppointmentID string    `json:"appointment_id"`
	PatientID     string    `json:"patient_id"`
	PaymentID     string    `json:"payment_id"`
	OrderID       string    `json:"order_id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}
