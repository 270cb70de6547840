package prescriptions

import "time"

// Medicine is one line item on a prescription.
type Medicine struct {
	Name     string `json:"name"`
	Dosage   string `json:"dosage,omitempty"`
	Schedule string `json:"schedule,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// Prescription is issued by a doctor, optionally tied to an appointment.
type Prescription struct {
	ID            string     `json:"id"`
	PatientID     string     `json:"patient_id"`
	DoctorID      string     `json:"doctor_id"`
	AppointmentID string     `json:"appointment_id,omitempty"`
	Medicines     []Medicine `json:"medicines"`
	Instructions  string     `json:"instructions,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
