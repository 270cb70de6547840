package prescriptions

import (
	"encoding/json"
	"net/http"

	"github.com/carebridge-health/telecare-platform/internal/realtime"
	"github.com/carebridge-health/telecare-platform/internal/session"
	"github.com/carebridge-health/telecare-platform/pkg/logging"
)

// Handler serves prescriptions.
type Handler struct {
	repo   *Repository
	bus    realtime.Bus
	logger *logging.Logger
}

func NewHandler(repo *Repository, bus realtime.Bus, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, bus: bus, logger: logger.Component("prescriptions")}
}

// Create handles POST /prescriptions. Doctor action; the session user becomes
// the issuing doctor.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok || sess.Role != session.RoleDoctor {
		http.Error(w, "doctor session required", http.StatusForbidden)
		return
	}

	var p Prescription
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if p.PatientID == "" || len(p.Medicines) == 0 {
		http.Error(w, "patient_id and medicines are required", http.StatusUnprocessableEntity)
		return
	}
	p.DoctorID = sess.UserID

	if err := h.repo.Insert(r.Context(), &p); err != nil {
		h.logger.Error("insert prescription failed", "error", err)
		http.Error(w, "failed to create prescription", http.StatusInternalServerError)
		return
	}

	if h.bus != nil {
		event := realtime.ChangeEvent{
			Table: "prescriptions", Op: realtime.OpInsert,
			FilterColumn: "patient_id", FilterValue: p.PatientID,
		}
		if err := h.bus.Publish(r.Context(), event); err != nil {
			h.logger.Error("publish prescription change failed", "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(p)
}

// List handles GET /prescriptions, scoped by session role.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "session required", http.StatusForbidden)
		return
	}

	ownerColumn := "patient_id"
	if sess.Role == session.RoleDoctor {
		ownerColumn = "doctor_id"
	}
	list, err := h.repo.ListByOwner(r.Context(), ownerColumn, sess.UserID)
	if err != nil {
		h.logger.Error("list prescriptions failed", "error", err)
		http.Error(w, "failed to load prescriptions", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"prescriptions": list})
}
