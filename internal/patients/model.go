package patients

import "time"

// Patient is the profile behind a patient dashboard session.
type Patient struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	DateOfBirth string    `json:"date_of_birth,omitempty"`
	BloodGroup  string    `json:"blood_group,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
