package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultTwilioBaseURL = "https://api.twilio.com"

// TwilioConfig - учетные данные Twilio
type TwilioConfig struct {
	AccountSID       string
	AuthToken        string
	WhatsAppFrom     string
	PickupContentSID string
	BaseURL          string
}

func (c TwilioConfig) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.WhatsAppFrom != ""
}

type twilioMessage struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// TwilioProvider отправляет сообщения через Twilio Messages API
type TwilioProvider struct {
	httpClient *resty.Client
	cfg        TwilioConfig
	templates  *TemplateManager
}

func NewTwilioProvider(cfg TwilioConfig, templates *TemplateManager) (*TwilioProvider, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultTwilioBaseURL
	}
	if templates == nil {
		templates = NewTemplateManager()
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(15 * time.Second).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json")

	return &TwilioProvider{httpClient: client, cfg: cfg, templates: templates}, nil
}

func (p *TwilioProvider) SendArrival(ctx context.Context, notice ArrivalNotice) (string, error) {
	if notice.Phone == "" {
		return "", ErrPhoneRequired
	}

	body, err := p.templates.Render(TemplateArrival, notice)
	if err != nil {
		return "", err
	}

	return p.send(ctx, map[string]string{
		"To":   WhatsAppAddress(notice.Phone),
		"From": WhatsAppAddress(p.cfg.WhatsAppFrom),
		"Body": body,
	})
}

// SendPickupConfirmation использует одобренный WhatsApp-шаблон: {{1}} имя, {{2}} дата и время
func (p *TwilioProvider) SendPickupConfirmation(ctx context.Context, notice PickupNotice) (string, error) {
	if notice.Phone == "" {
		return "", ErrPhoneRequired
	}

	name := notice.ResidentName
	if name == "" {
		name = "Morador"
	}
	pickedUpAt := notice.PickedUpAt
	if pickedUpAt.IsZero() {
		pickedUpAt = time.Now()
	}

	variables, err := json.Marshal(map[string]string{
		"1": name,
		"2": FormatPickupTime(pickedUpAt),
	})
	if err != nil {
		return "", err
	}

	return p.send(ctx, map[string]string{
		"To":               WhatsAppAddress(notice.Phone),
		"From":             WhatsAppAddress(p.cfg.WhatsAppFrom),
		"ContentSid":       p.cfg.PickupContentSID,
		"ContentVariables": string(variables),
	})
}

func (p *TwilioProvider) send(ctx context.Context, form map[string]string) (string, error) {
	var result twilioMessage
	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&result).
		SetError(&result).
		Post(fmt.Sprintf("/2010-04-01/Accounts/%s/Messages.json", p.cfg.AccountSID))
	if err != nil {
		return "", fmt.Errorf("failed to call Twilio: %w", err)
	}

	if resp.IsError() {
		msg := result.Message
		if msg == "" {
			msg = resp.String()
		}
		return "", fmt.Errorf("Twilio error [%d]: %s", resp.StatusCode(), msg)
	}

	return result.SID, nil
}
