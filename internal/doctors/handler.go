package doctors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carebridge-health/telecare-platform/internal/session"
	"github.com/carebridge-health/telecare-platform/pkg/logging"
)

// Handler serves the doctor directory.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a doctors handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger.Component("doctors")}
}

// List handles GET /doctors.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("list doctors failed", "error", err)
		http.Error(w, "failed to load doctors", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"doctors": list})
}

// Get handles GET /doctors/{doctorID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "doctorID")
	doc, err := h.repo.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "doctor not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("get doctor failed", "error", err, "doctor_id", id)
		http.Error(w, "failed to load doctor", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(doc)
}

// SetAvailability handles PUT /doctors/{doctorID}/availability. Only the
// doctor's own session may flip the flag.
func (h *Handler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok || sess.Role != session.RoleDoctor {
		http.Error(w, "doctor session required", http.StatusForbidden)
		return
	}

	id := chi.URLParam(r, "doctorID")
	var req struct {
		Available bool `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.repo.SetAvailability(r.Context(), id, req.Available); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "doctor not found", http.StatusNotFound)
			return
		}
		h.logger.Error("set availability failed", "error", err, "doctor_id", id)
		http.Error(w, "failed to update availability", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
