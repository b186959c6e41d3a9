package labelreader

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GeminiReader ходит в Gemini API напрямую, без gateway
type GeminiReader struct {
	client *genai.Client
	model  string
}

func NewGeminiReader(ctx context.Context, apiKey, model string) (*GeminiReader, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiReader{client: client, model: geminiModelName(model)}, nil
}

// geminiModelName убирает префикс провайдера: "google/gemini-2.5-flash" -> "gemini-2.5-flash"
func geminiModelName(model string) string {
	if model == "" {
		model = DefaultModel
	}
	for i := len(model) - 1; i >= 0; i-- {
		if model[i] == '/' {
			return model[i+1:]
		}
	}
	return model
}

func (r *GeminiReader) ReadLabel(ctx context.Context, jpeg []byte) (*Reading, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(UserPrompt),
			genai.NewPartFromBytes(jpeg, "image/jpeg"),
		}, genai.RoleUser),
	}

	resp, err := r.client.Models.GenerateContent(ctx, r.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case http.StatusTooManyRequests:
				return nil, ErrRateLimited
			case http.StatusPaymentRequired:
				return nil, ErrCreditsExhausted
			}
		}
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	return ParseReading(resp.Text()), nil
}
