package vitals

import (
	"encoding/json"
	"net/http"

	"github.com/carebridge-health/telecare-platform/internal/realtime"
	"github.com/carebridge-health/telecare-platform/internal/session"
	"github.com/carebridge-health/telecare-platform/pkg/logging"
)

// Handler serves the vitals log.
type Handler struct {
	repo   *Repository
	bus    realtime.Bus
	logger *logging.Logger
}

func NewHandler(repo *Repository, bus realtime.Bus, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, bus: bus, logger: logger.Component("vitals")}
}

// Record handles POST /vitals.
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "session required", http.StatusForbidden)
		return
	}

	var reading Reading
	if err := json.NewDecoder(r.Body).Decode(&reading); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	reading.PatientID = sess.UserID

	if err := h.repo.Insert(r.Context(), &reading); err != nil {
		h.logger.Error("insert vitals failed", "error", err)
		http.Error(w, "failed to record vitals", http.StatusInternalServerError)
		return
	}

	if h.bus != nil {
		event := realtime.ChangeEvent{
			Table: "vitals", Op: realtime.OpInsert,
			FilterColumn: "patient_id", FilterValue: sess.UserID,
		}
		if err := h.bus.Publish(r.Context(), event); err != nil {
			h.logger.Error("publish vitals change failed", "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(reading)
}

// List handles GET /vitals.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "session required", http.StatusForbidden)
		return
	}

	list, err := h.repo.ListByPatient(r.Context(), sess.UserID, 100)
	if err != nil {
		h.logger.Error("list vitals failed", "error", err)
		http.Error(w, "failed to load vitals", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"vitals": list})
}
