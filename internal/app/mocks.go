package app

import (
	"context"

	"encomendas_backend/internal/logger"
	"encomendas_backend/internal/messaging"

	"github.com/google/uuid"
)

// LogMessenger используется в локальной разработке, когда Twilio не настроен:
// сообщения только пишутся в лог.
type LogMessenger struct{}

func (LogMessenger) SendArrival(_ context.Context, notice messaging.ArrivalNotice) (string, error) {
	if notice.Phone == "" {
		return "", messaging.ErrPhoneRequired
	}
	sid := "mock-" + uuid.NewString()
	logger.MessagingLog(messaging.KindArrival, notice.Phone, sid, nil)
	return sid, nil
}

func (LogMessenger) SendPickupConfirmation(_ context.Context, notice messaging.PickupNotice) (string, error) {
	if notice.Phone == "" {
		return "", messaging.ErrPhoneRequired
	}
	sid := "mock-" + uuid.NewString()
	logger.MessagingLog(messaging.KindPickup, notice.Phone, sid, nil)
	return sid, nil
}
