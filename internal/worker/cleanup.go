package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/techvault/identity-service/internal/repository"
)

// CleanupWorker periodically clears expired verification codes so stale
// OTP state does not linger on account rows.
type CleanupWorker struct {
	accountRepo repository.IAccountRepository
	interval    time.Duration
	stopChan    chan bool
}

// NewCleanupWorker creates a new cleanup worker
func NewCleanupWorker(accountRepo repository.IAccountRepository, interval time.Duration) *CleanupWorker {
	return &CleanupWorker{
		accountRepo: accountRepo,
		interval:    interval,
		stopChan:    make(chan bool),
	}
}

// Start starts the cleanup worker
func (w *CleanupWorker) Start() {
	zap.L().Info("starting cleanup worker", zap.Duration("interval", w.interval))

	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				w.cleanup()
			case <-w.stopChan:
				zap.L().Info("stopping cleanup worker")
				return
			}
		}
	}()
}

// Stop stops the cleanup worker
func (w *CleanupWorker) Stop() {
	w.stopChan <- true
}

func (w *CleanupWorker) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := w.accountRepo.ClearExpiredVerificationCodes(ctx, time.Now()); err != nil {
		zap.L().Error("failed to clear expired verification codes", zap.Error(err))
		return
	}
	zap.L().Debug("expired verification codes cleared")
}
