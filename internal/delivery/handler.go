package delivery

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carebridge-health/telecare-platform/internal/realtime"
	"github.com/carebridge-health/telecare-platform/internal/session"
	"github.com/carebridge-health/telecare-platform/pkg/logging"
)

// Handler serves delivery tracking.
type Handler struct {
	repo   *Repository
	bus    realtime.Bus
	logger *logging.Logger
}

func NewHandler(repo *Repository, bus realtime.Bus, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, bus: bus, logger: logger.Component("delivery")}
}

// List handles GET /deliveries.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "session required", http.StatusForbidden)
		return
	}

	list, err := h.repo.ListByPatient(r.Context(), sess.UserID)
	if err != nil {
		h.logger.Error("list deliveries failed", "error", err)
		http.Error(w, "failed to load deliveries", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"deliveries": list})
}

// Create handles POST /deliveries.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "session required", http.StatusForbidden)
		return
	}

	var d Delivery
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if d.PrescriptionID == "" {
		http.Error(w, "prescription_id is required", http.StatusUnprocessableEntity)
		return
	}
	d.PatientID = sess.UserID

	if err := h.repo.Create(r.Context(), &d); err != nil {
		h.logger.Error("create delivery failed", "error", err)
		http.Error(w, "failed to create delivery", http.StatusInternalServerError)
		return
	}
	h.publishChange(r, sess.UserID, realtime.OpInsert)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(d)
}

// Advance handles POST /deliveries/{deliveryID}/advance.
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "session required", http.StatusForbidden)
		return
	}

	var req struct {
		Note string `json:"note"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	id := chi.URLParam(r, "deliveryID")
	next, err := h.repo.Advance(r.Context(), sess.UserID, id, req.Note)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "delivery not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, ErrTerminal) {
		http.Error(w, "delivery already delivered", http.StatusConflict)
		return
	}
	if err != nil {
		h.logger.Error("advance delivery failed", "error", err, "delivery_id", id)
		http.Error(w, "failed to advance delivery", http.StatusInternalServerError)
		return
	}
	h.publishChange(r, sess.UserID, realtime.OpUpdate)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"status": next})
}

func (h *Handler) publishChange(r *http.Request, patientID, op string) {
	if h.bus == nil {
		return
	}
	event := realtime.ChangeEvent{
		Table: "deliveries", Op: op,
		FilterColumn: "patient_id", FilterValue: patientID,
	}
	if err := h.bus.Publish(r.Context(), event); err != nil {
		h.logger.Error("publish delivery change failed", "error", err)
	}
}
