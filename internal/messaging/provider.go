package messaging

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrPhoneRequired = errors.New("phone number is required")
	ErrNotConfigured = errors.New("twilio credentials not configured")
)

// Виды сообщений (для логов и метрик)
const (
	KindArrival = "arrival"
	KindPickup  = "pickup"
)

// ArrivalNotice - уведомление о посылке, ожидающей в портарии
type ArrivalNotice struct {
	Phone        string
	ResidentName string
	RegisteredBy string
}

// PickupNotice - подтверждение выдачи посылки
type PickupNotice struct {
	Phone        string
	ResidentName string
	PickedUpAt   time.Time
}

// Provider отправляет WhatsApp сообщения и возвращает id сообщения у провайдера
type Provider interface {
	SendArrival(ctx context.Context, notice ArrivalNotice) (string, error)
	SendPickupConfirmation(ctx context.Context, notice PickupNotice) (string, error)
}

// WhatsAppAddress добавляет префикс "whatsapp:", если его нет
func WhatsAppAddress(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "whatsapp:") {
		return phone
	}
	return "whatsapp:" + phone
}
