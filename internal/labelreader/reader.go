package labelreader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"encomendas_backend/internal/models"
)

var (
	ErrRateLimited      = errors.New("ai rate limit exceeded")
	ErrCreditsExhausted = errors.New("ai credits exhausted")
	ErrNotConfigured    = errors.New("ai api key is not configured")
)

// Reading - ответ модели. Suggestion == nil, если JSON не разобрался; RawText есть всегда.
type Reading struct {
	Suggestion *models.LabelSuggestion `json:"suggestion"`
	RawText    string                  `json:"raw_text"`
}

// Reader читает этикетку по JPEG-фото
type Reader interface {
	ReadLabel(ctx context.Context, jpeg []byte) (*Reading, error)
}

// Config - настройки провайдера
type Config struct {
	Provider   string // gateway, gemini
	GatewayURL string
	APIKey     string
	Model      string
	Timeout    time.Duration
}

// New выбирает провайдера по конфигу
func New(ctx context.Context, cfg Config) (Reader, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	switch cfg.Provider {
	case "gateway", "":
		return NewGatewayReader(cfg.GatewayURL, cfg.APIKey, cfg.Model).WithTimeout(cfg.Timeout), nil
	case "gemini":
		return NewGeminiReader(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

var (
	fenceRe  = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")
	objectRe = regexp.MustCompile(`\{[\s\S]*\}`)
)

// ExtractJSON достает JSON из ответа модели: содержимое блока ```json, иначе
// участок от первой "{" до последней "}", иначе сам текст.
func ExtractJSON(raw string) string {
	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := objectRe.FindString(raw); m != "" {
		return m
	}
	return raw
}

// ParseReading разбирает ответ модели. Поля остаются как есть: сжатые формы ("B01")
// раскладывает матчер, ровно один раз.
func ParseReading(raw string) *Reading {
	reading := &Reading{RawText: raw}

	var suggestion models.LabelSuggestion
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &suggestion); err != nil {
		return reading
	}

	reading.Suggestion = &suggestion
	return reading
}
