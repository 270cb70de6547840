package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/carebridge-health/telecare-platform/pkg/logging"
)

const symptomSystemPrompt = `You are a telehealth triage assistant for CareBridge Health.
Help the patient describe their symptoms clearly and suggest which medical
specialty fits their situation. You are not a doctor: never diagnose, never
prescribe, and tell the patient to seek emergency care for chest pain,
breathing difficulty, severe bleeding or loss of consciousness. Keep answers
short and plain.`

const prescriptionPrompt = `Read this prescription image. List each medicine
with its dosage and schedule in plain language a patient can follow. If any
part is illegible, say so instead of guessing.`

// Service is a thin passthrough to the model provider; conversation state
// lives in the client.
type Service struct {
	completer Completer
	logger    *logging.Logger
}

func NewService(completer Completer, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{completer: completer, logger: logger.Component("assistant")}
}

// SymptomChat answers one turn of the symptom conversation.
func (s *Service) SymptomChat(ctx context.Context, history []ChatMessage) (string, error) {
	if s.completer == nil {
		return "", errors.New("assistant: not configured")
	}
	if len(history) == 0 {
		return "", errors.New("assistant: empty conversation")
	}
	reply, err := s.completer.Chat(ctx, symptomSystemPrompt, history)
	if err != nil {
		s.logger.Error("symptom chat failed", "error", err)
		return "", fmt.Errorf("assistant: chat: %w", err)
	}
	return reply, nil
}

// AnalyzePrescription explains a prescription image.
func (s *Service) AnalyzePrescription(ctx context.Context, image []byte, mimeType string) (string, error) {
	if s.completer == nil {
		return "", errors.New("assistant: not configured")
	}
	if len(image) == 0 {
		return "", errors.New("assistant: image is required")
	}
	result, err := s.completer.Vision(ctx, prescriptionPrompt, image, mimeType)
	if err != nil {
		s.logger.Error("prescription analysis failed", "error", err)
		return "", fmt.Errorf("assistant: analyze: %w", err)
	}
	return result, nil
}
