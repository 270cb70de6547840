package assistant

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/carebridge-health/telecare-platform/internal/session"
	"github.com/carebridge-health/telecare-platform/pkg/logging"
)

// 5 MB cap on prescription images.
const maxImageBytes = 5 << 20

// Handler serves the assistant endpoints.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger.Component("assistant.http")}
}

// Chat handles POST /assistant/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if _, ok := session.FromContext(r.Context()); !ok {
		http.Error(w, "session required", http.StatusForbidden)
		return
	}

	var req struct {
		Messages []ChatMessage `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Messages) == 0 {
		http.Error(w, "messages are required", http.StatusUnprocessableEntity)
		return
	}

	reply, err := h.svc.SymptomChat(r.Context(), req.Messages)
	if err != nil {
		http.Error(w, "assistant unavailable", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"reply": reply})
}

// Analyze handles POST /assistant/analyze. The body is the raw image; the
// Content-Type header carries the mime type.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	if _, ok := session.FromContext(r.Context()); !ok {
		http.Error(w, "session required", http.StatusForbidden)
		return
	}

	image, err := io.ReadAll(io.LimitReader(r.Body, maxImageBytes))
	if err != nil {
		http.Error(w, "failed to read image", http.StatusBadRequest)
		return
	}
	if len(image) == 0 {
		http.Error(w, "image body is required", http.StatusUnprocessableEntity)
		return
	}

	result, err := h.svc.AnalyzePrescription(r.Context(), image, r.Header.Get("Content-Type"))
	if err != nil {
		http.Error(w, "assistant unavailable", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"analysis": result})
}
