package doctors

import "time"

// Doctor is a bookable practitioner. ConsultationFee is in paise; a zero fee
// means booking skips the payment gateway entirely.
type Doctor struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id,omitempty"`
	Name            string    `json:"name"`
	Specialty       string    `json:"specialty"`
	ConsultationFee int64     `json:"consultation_fee"`
	MeetLink        string    `json:"meet_link,omitempty"`
	Available       bool      `json:"available"`
	CreatedAt       time.Time `json:"created_at"`
}

// Online reports whether consultations with this doctor happen over video.
func (d Doctor) Online() bool {
	return d.MeetLink != ""
}
