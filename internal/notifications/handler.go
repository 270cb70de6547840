package notifications

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carebridge-health/telecare-platform/internal/session"
	"github.com/carebridge-health/telecare-platform/pkg/logging"
)

// Handler serves the notification feed.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger.Component("notifications.http")}
}

// List handles GET /notifications.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "session required", http.StatusForbidden)
		return
	}

	list, err := h.repo.ListByUser(r.Context(), sess.UserID, 50)
	if err != nil {
		h.logger.Error("list notifications failed", "error", err)
		http.Error(w, "failed to load notifications", http.StatusInternalServerError)
		return
	}
	unread, err := h.repo.CountUnread(r.Context(), sess.UserID)
	if err != nil {
		h.logger.Error("count unread failed", "error", err)
		http.Error(w, "failed to load notifications", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"notifications": list,
		"unread":        unread,
	})
}

// MarkRead handles POST /notifications/{notificationID}/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "session required", http.StatusForbidden)
		return
	}

	id := chi.URLParam(r, "notificationID")
	changed, err := h.repo.MarkRead(r.Context(), sess.UserID, id)
	if err != nil {
		h.logger.Error("mark read failed", "error", err, "notification_id", id)
		http.Error(w, "failed to update notification", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"read": changed})
}

// MarkAllRead handles POST /notifications/read-all.
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "session required", http.StatusForbidden)
		return
	}

	n, err := h.repo.MarkAllRead(r.Context(), sess.UserID)
	if err != nil {
		h.logger.Error("mark all read failed", "error", err)
		http.Error(w, "failed to update notifications", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int64{"updated": n})
}
