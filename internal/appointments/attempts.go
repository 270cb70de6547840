package appointments

import (
	"sync"
	"time"

	"github.com/carebridge-health/telecare-platform/internal/doctors"
)

// bookingAttempt is the transient state between order creation and the
// widget's completion callback. It mirrors the payment order: never
// persisted, folded into the appointment on finalize.
type bookingAttempt struct {
	PatientID string
	Doctor    doctors.Doctor
	Amount    int64
	Notes     string
	Date      string
	Time      string
	CreatedAt time.Time
}

// attemptRegistry holds pending attempts keyed by order id. The callback may
// arrive after arbitrary delay or never; abandoned attempts are pruned
// lazily after maxAttemptAge so the map cannot grow without bound.
type attemptRegistry struct {
	mu       sync.Mutex
	attempts map[string]bookingAttempt
}

const maxAttemptAge = 24 * time.Hour

func newAttemptRegistry() *attemptRegistry {
	return &attemptRegistry{attempts: make(map[string]bookingAttempt)}
}

func (r *attemptRegistry) put(orderID string, attempt bookingAttempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-maxAttemptAge)
	for id, a := range r.attempts {
		if a.CreatedAt.Before(cutoff) {
			delete(r.attempts, id)
		}
	}
	r.attempts[orderID] = attempt
}

func (r *attemptRegistry) take(orderID string) (bookingAttempt, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attempt, ok := r.attempts[orderID]
	if ok {
		delete(r.attempts, orderID)
	}
	return attempt, ok
}

func (r *attemptRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.attempts)
}
