package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ChatRole identifies who authored a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn in the symptom conversation.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// Completer is the model behind the assistant. GeminiClient implements it;
// tests use a stub.
type Completer interface {
	Chat(ctx context.Context, system string, history []ChatMessage) (string, error)
	Vision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
	Close() error
}

// GeminiClient implements Completer using Google's Gemini API.
type GeminiClient struct {
	client  *genai.Client
	modelID string
}

// NewGeminiClient creates a Gemini-backed completer.
func NewGeminiClient(ctx context.Context, apiKey, modelID string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("assistant: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("assistant: failed to create gemini client: %w", err)
	}
	return &GeminiClient{client: client, modelID: modelID}, nil
}

// Chat runs one completion over the conversation history.
func (c *GeminiClient) Chat(ctx context.Context, system string, history []ChatMessage) (string, error) {
	if len(history) == 0 {
		return "", errors.New("assistant: at least one message is required")
	}

	model := c.client.GenerativeModel(c.modelID)
	if strings.TrimSpace(system) != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}

	cs := model.StartChat()
	for _, msg := range history[:len(history)-1] {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		role := "user"
		if msg.Role == RoleAssistant {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(content)},
		})
	}

	last := history[len(history)-1]
	resp, err := cs.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return "", fmt.Errorf("assistant: gemini completion failed: %w", err)
	}
	return extractText(resp)
}

// Vision runs a single prompt over an inline image.
func (c *GeminiClient) Vision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", errors.New("assistant: image data is required")
	}
	format := strings.TrimPrefix(mimeType, "image/")

	model := c.client.GenerativeModel(c.modelID)
	resp, err := model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.ImageData(format, image))
	if err != nil {
		return "", fmt.Errorf("assistant: gemini vision failed: %w", err)
	}
	return extractText(resp)
}

// Close releases resources held by the Gemini client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", errors.New("assistant: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("assistant: gemini returned empty content")
	}

	var out strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	return strings.TrimSpace(out.String()), nil
}
