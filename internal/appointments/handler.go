package appointments

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carebridge-health/telecare-platform/internal/session"
	"github.com/carebridge-health/telecare-platform/pkg/logging"
)

// Handler exposes the appointment lifecycle over HTTP.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates an appointments handler.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger.Component("appointments.http")}
}

// statusFor maps coordinator error kinds onto HTTP statuses.
func statusFor(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindPaymentInit:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("appointment request failed", "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
		"kind":  string(KindOf(err)),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// List handles GET /appointments.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "session required", http.StatusForbidden)
		return
	}
	list, err := h.svc.ListMine(r.Context(), sess)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": list})
}

// Book handles POST /appointments. The response carries either the finalized
// appointment (zero-fee doctor, 201) or a checkout intent for the payment
// widget (202).
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "session required", http.StatusForbidden)
		return
	}

	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	outcome, err := h.svc.InitiateBooking(r.Context(), sess, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if outcome.Checkout != nil {
		writeJSON(w, http.StatusAccepted, outcome)
		return
	}
	writeJSON(w, http.StatusCreated, outcome)
}

// PaymentCallback handles POST /payments/callback. The route is public; the
// widget posts here from the browser and the HMAC signature is the only
// authentication.
func (h *Handler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentID string `json:"razorpay_payment_id"`
		OrderID   string `json:"razorpay_order_id"`
		Signature string `json:"razorpay_signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.svc.HandlePaymentCallback(r.Context(), req.PaymentID, req.OrderID, req.Signature)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"appointment": appt})
}

// Reschedule handles PATCH /appointments/{appointmentID}/reschedule.
func (h *Handler) Reschedule(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "session required", http.StatusForbidden)
		return
	}

	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.svc.Reschedule(r.Context(), sess, chi.URLParam(r, "appointmentID"), req.Date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// Cancel handles POST /appointments/{appointmentID}/cancel. Cancelling twice
// returns 200 both times; the body reports whether this call changed the row.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "session required", http.StatusForbidden)
		return
	}

	appt, changed, err := h.svc.Cancel(r.Context(), sess, chi.URLParam(r, "appointmentID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cancelled": changed, "appointment": appt})
}

// Complete handles POST /appointments/{appointmentID}/complete.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "session required", http.StatusForbidden)
		return
	}

	appt, err := h.svc.Complete(r.Context(), sess, chi.URLParam(r, "appointmentID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}
