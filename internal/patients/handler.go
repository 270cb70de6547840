package patients

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/carebridge-health/telecare-platform/internal/session"
	"github.com/carebridge-health/telecare-platform/pkg/logging"
)

// Handler serves the patient profile endpoints.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a patients handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger.Component("patients")}
}

// Me handles GET /patients/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "session required", http.StatusUnauthorized)
		return
	}

	p, err := h.repo.GetByUserID(r.Context(), sess.UserID)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("load profile failed", "error", err, "user_id", sess.UserID)
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}

// UpdateMe handles PUT /patients/me.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "session required", http.StatusUnauthorized)
		return
	}

	var p Patient
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if p.Name == "" || p.Email == "" {
		http.Error(w, "name and email are required", http.StatusUnprocessableEntity)
		return
	}
	p.UserID = sess.UserID

	if existing, err := h.repo.GetByUserID(r.Context(), sess.UserID); err == nil {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	}

	if err := h.repo.Upsert(r.Context(), &p); err != nil {
		h.logger.Error("upsert profile failed", "error", err, "user_id", sess.UserID)
		http.Error(w, "failed to save profile", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}
