package vitals

import "time"

// Reading is one set of vital signs recorded by a patient or device.
// Zero-valued measurements mean "not recorded".
type Reading struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	RecordedAt  time.Time `json:"recorded_at"`
	HeartRate   int       `json:"heart_rate,omitempty"`
	Systolic    int       `json:"systolic,omitempty"`
	Diastolic   int       `json:"diastolic,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	SpO2        int       `json:"spo2,omitempty"`
	Glucose     int       `json:"glucose,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}
