package handlers_test

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aula-platform/aula/internal/guard"
	"github.com/aula-platform/aula/internal/handlers"
	"github.com/stretchr/testify/assert"
)

func TestGuardStats_ReflectsTracking(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loginGuard := guard.NewLoginGuard(logger)

	now := time.Now()
	loginGuard.RecordOutcome("10.0.0.1", guard.Failure, now)
	loginGuard.RecordOutcome("10.0.0.2", guard.Failure, now)

	handler := handlers.NewAdminHandler(loginGuard)

	w := httptest.NewRecorder()
	handler.GuardStats(w, handlers.NewTestRequest(t, "GET", "/admin/guard/stats", nil))

	var stats guard.Stats
	handlers.AssertJSONResponse(t, w, 200, &stats)
	assert.Equal(t, 2, stats.TotalTracked)
	assert.Equal(t, 0, stats.BlockedCount)
	assert.Equal(t, 2, stats.RecentCount)
}
