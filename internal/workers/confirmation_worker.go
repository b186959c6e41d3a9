package workers

import (
	"context"
	"errors"
	"time"

	"encomendas_backend/internal/logger"

	"gorm.io/gorm"
)

const confirmationWorkerName = "pickup_confirmation"

// ConfirmationRetrier - часть PackageService, которая нужна воркеру
type ConfirmationRetrier interface {
	RetryPickupConfirmations(ctx context.Context, db *gorm.DB, limit int) (int, error)
}

// ConfirmationWorker досылает WhatsApp подтверждения выдачи, которые не ушли в момент выдачи
type ConfirmationWorker struct {
	db       *gorm.DB
	packages ConfirmationRetrier
	interval time.Duration
	batch    int
}

func NewConfirmationWorker(db *gorm.DB, packages ConfirmationRetrier, interval time.Duration, batch int) *ConfirmationWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if batch <= 0 {
		batch = 50
	}
	return &ConfirmationWorker{
		db:       db,
		packages: packages,
		interval: interval,
		batch:    batch,
	}
}

// Run блокируется до отмены ctx
func (w *ConfirmationWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Confirmation worker stopped")
			return nil
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *ConfirmationWorker) tick(ctx context.Context) {
	sent, err := w.packages.RetryPickupConfirmations(ctx, w.db, w.batch)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.WorkerLog(confirmationWorkerName, "retry", err)
		return
	}
	if sent > 0 {
		logger.Info("Pickup confirmations re-sent", "worker", confirmationWorkerName, "sent", sent)
	}
}
