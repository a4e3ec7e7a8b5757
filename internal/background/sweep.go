package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/aula-platform/aula/internal/guard"
	"github.com/aula-platform/aula/internal/repositories"
)

// SweepManager periodically garbage-collects stale login guard records and
// expired token revocation rows.
type SweepManager struct {
	loginGuard *guard.LoginGuard
	revokeRepo *repositories.TokenRevocationRepository
	logger     *slog.Logger
	interval   time.Duration
	stopCh     chan struct{}
}

// NewSweepManager creates a new sweep manager
func NewSweepManager(
	loginGuard *guard.LoginGuard,
	revokeRepo *repositories.TokenRevocationRepository,
	logger *slog.Logger,
	interval time.Duration,
) *SweepManager {
	return &SweepManager{
		loginGuard: loginGuard,
		revokeRepo: revokeRepo,
		logger:     logger,
		interval:   interval,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the periodic sweep task. Blocks until Stop is called or the
// context is cancelled; run it in its own goroutine.
func (sm *SweepManager) Start(ctx context.Context) {
	ticker := time.NewTicker(sm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	sm.runSweep(ctx)

	for {
		select {
		case <-ticker.C:
			sm.runSweep(ctx)
		case <-sm.stopCh:
			sm.logger.Info("sweep manager stopped")
			return
		case <-ctx.Done():
			sm.logger.Info("sweep manager context cancelled")
			return
		}
	}
}

func (sm *SweepManager) runSweep(ctx context.Context) {
	removed := sm.loginGuard.SweepExpired(time.Now())
	if removed > 0 {
		sm.logger.Info("login guard sweep completed", slog.Int("records_removed", removed))
	}

	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rowsDeleted, err := sm.revokeRepo.CleanupExpiredTokens(sweepCtx)
	if err != nil {
		sm.logger.Error("failed to cleanup expired revoked tokens", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		sm.logger.Info("revoked token cleanup completed", slog.Int64("rows_deleted", rowsDeleted))
	}
}

// Stop signals the sweep manager to stop
func (sm *SweepManager) Stop() {
	close(sm.stopCh)
}
