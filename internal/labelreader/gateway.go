package labelreader

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultGatewayURL = "https://ai.gateway.lovable.dev/v1"
	DefaultModel      = "google/gemini-2.5-flash"
)

type chatContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GatewayReader - OpenAI-совместимый AI gateway (chat/completions)
type GatewayReader struct {
	httpClient *resty.Client
	model      string
}

func NewGatewayReader(baseURL, apiKey, model string) *GatewayReader {
	if baseURL == "" {
		baseURL = DefaultGatewayURL
	}
	if model == "" {
		model = DefaultModel
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(60 * time.Second). // vision-модели отвечают долго
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &GatewayReader{httpClient: client, model: model}
}

// WithTimeout переопределяет таймаут запроса к gateway
func (r *GatewayReader) WithTimeout(d time.Duration) *GatewayReader {
	if d > 0 {
		r.httpClient.SetTimeout(d)
	}
	return r
}

// ReadLabel отправляет фото как data URL. 429 и 402 возвращаются отдельными ошибками.
func (r *GatewayReader) ReadLabel(ctx context.Context, jpeg []byte) (*Reading, error) {
	request := chatRequest{
		Model: r.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: []chatContentPart{
				{Type: "text", Text: UserPrompt},
				{Type: "image_url", ImageURL: &imageURL{
					URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg),
				}},
			}},
		},
	}

	var response chatResponse
	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("failed to call AI gateway: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode() == http.StatusPaymentRequired:
		return nil, ErrCreditsExhausted
	case resp.IsError():
		return nil, fmt.Errorf("AI gateway error: %d %s", resp.StatusCode(), truncate(resp.String(), 300))
	}

	raw := ""
	if len(response.Choices) > 0 {
		raw = response.Choices[0].Message.Content
	}
	return ParseReading(raw), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
