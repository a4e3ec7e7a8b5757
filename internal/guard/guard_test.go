package guard_test

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aula-platform/aula/internal/guard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testClient   = "1.2.3.4"
	testEmail    = "student@example.com"
	testPassword = "CorrectHorse1!"
)

func newTestGuard() *guard.LoginGuard {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	return guard.NewLoginGuard(logger)
}

// failN records n verifier failures for clientID, one second apart starting at t.
func failN(g *guard.LoginGuard, clientID string, n int, t time.Time) time.Time {
	for i := 0; i < n; i++ {
		g.RecordOutcome(clientID, guard.Failure, t)
		t = t.Add(time.Second)
	}
	return t
}

func TestCheckAndAdmit_NoHistoryAdmits(t *testing.T) {
	g := newTestGuard()
	now := time.Now()

	d := g.CheckAndAdmit(testClient, testEmail, testPassword, now)

	assert.Equal(t, guard.Admit, d.Verdict)
}

func TestCheckAndAdmit_LocksAfterFiveFailures(t *testing.T) {
	// 5 failures within 2 minutes; the 6th check rejects for 900s.
	g := newTestGuard()
	start := time.Now()
	now := failN(g, testClient, 5, start)

	d := g.CheckAndAdmit(testClient, testEmail, testPassword, now)

	require.Equal(t, guard.Reject, d.Verdict)
	assert.Equal(t, 900, d.RetryAfterSeconds)
}

func TestCheckAndAdmit_FourFailuresStillAdmit(t *testing.T) {
	g := newTestGuard()
	now := failN(g, testClient, 4, time.Now())

	d := g.CheckAndAdmit(testClient, testEmail, testPassword, now)

	assert.Equal(t, guard.Admit, d.Verdict)
}

func TestCheckAndAdmit_ActiveLockoutCountsDown(t *testing.T) {
	g := newTestGuard()
	now := failN(g, testClient, 5, time.Now())

	d := g.CheckAndAdmit(testClient, testEmail, testPassword, now)
	require.Equal(t, guard.Reject, d.Verdict)
	require.Equal(t, 900, d.RetryAfterSeconds)

	// 10 minutes into the 15-minute lockout, 5 minutes remain.
	d = g.CheckAndAdmit(testClient, testEmail, testPassword, now.Add(10*time.Minute))
	require.Equal(t, guard.Reject, d.Verdict)
	assert.Equal(t, 300, d.RetryAfterSeconds)
}

func TestCheckAndAdmit_RetryAfterRoundsUp(t *testing.T) {
	g := newTestGuard()
	now := failN(g, testClient, 5, time.Now())

	d := g.CheckAndAdmit(testClient, testEmail, testPassword, now)
	require.Equal(t, guard.Reject, d.Verdict)

	// 100ms before expiry still reports one full second remaining.
	almost := now.Add(15*time.Minute - 100*time.Millisecond)
	d = g.CheckAndAdmit(testClient, testEmail, testPassword, almost)
	require.Equal(t, guard.Reject, d.Verdict)
	assert.Equal(t, 1, d.RetryAfterSeconds)
}

func TestEscalation_FollowsBlockMinutesFormula(t *testing.T) {
	// blockMinutes = min(15*ceil(n/5), 60) at each escalation point.
	cases := []struct {
		failures    int
		wantSeconds int
	}{
		{5, 900},   // 15 minutes
		{10, 1800}, // 30 minutes
		{15, 2700}, // 45 minutes
		{20, 3600}, // capped at 60 minutes
		{40, 3600}, // cap holds for any larger count
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("failures=%d", tc.failures), func(t *testing.T) {
			g := newTestGuard()
			now := failN(g, testClient, tc.failures, time.Now())

			d := g.CheckAndAdmit(testClient, testEmail, testPassword, now)

			require.Equal(t, guard.Reject, d.Verdict)
			assert.Equal(t, tc.wantSeconds, d.RetryAfterSeconds)
		})
	}
}

func TestRecordOutcome_SuccessClears(t *testing.T) {
	g := newTestGuard()
	now := failN(g, testClient, 3, time.Now())

	g.RecordOutcome(testClient, guard.Success, now)

	d := g.CheckAndAdmit(testClient, testEmail, testPassword, now)
	assert.Equal(t, guard.Admit, d.Verdict)
	assert.Equal(t, 0, g.GetStats(now).TotalTracked)
}

func TestRecordOutcome_SuccessClearsEvenPastThreshold(t *testing.T) {
	g := newTestGuard()
	now := failN(g, testClient, 7, time.Now())

	g.RecordOutcome(testClient, guard.Success, now)

	d := g.CheckAndAdmit(testClient, testEmail, testPassword, now)
	assert.Equal(t, guard.Admit, d.Verdict)
}

func TestCheckAndAdmit_IdleResetPurges(t *testing.T) {
	// A failure at t=0 with the next check at t=16min admits and purges.
	g := newTestGuard()
	start := time.Now()
	g.RecordOutcome(testClient, guard.Failure, start)

	later := start.Add(16 * time.Minute)
	d := g.CheckAndAdmit(testClient, testEmail, testPassword, later)

	assert.Equal(t, guard.Admit, d.Verdict)
	assert.Equal(t, 0, g.GetStats(later).TotalTracked)
}

func TestCheckAndAdmit_LockoutExpiryAdmits(t *testing.T) {
	g := newTestGuard()
	now := failN(g, testClient, 5, time.Now())

	d := g.CheckAndAdmit(testClient, testEmail, testPassword, now)
	require.Equal(t, guard.Reject, d.Verdict)

	after := now.Add(15*time.Minute + time.Second)
	d = g.CheckAndAdmit(testClient, testEmail, testPassword, after)
	assert.Equal(t, guard.Admit, d.Verdict)
}

func TestCheckAndAdmit_NoImmediateRelockWithoutNewFailures(t *testing.T) {
	// An expired lockout re-locks only after failures accumulate past the
	// threshold again.
	g := newTestGuard()
	now := failN(g, testClient, 5, time.Now())

	d := g.CheckAndAdmit(testClient, testEmail, testPassword, now)
	require.Equal(t, guard.Reject, d.Verdict)

	// Exactly at expiry the idle reset has not fired yet; the retained count
	// alone must not produce a fresh lockout.
	atExpiry := now.Add(15 * time.Minute)
	d = g.CheckAndAdmit(testClient, testEmail, testPassword, atExpiry)
	assert.Equal(t, guard.Admit, d.Verdict)

	// A new failure pushes the count past the last lockout point and
	// escalates on the next check.
	g.RecordOutcome(testClient, guard.Failure, atExpiry)
	d = g.CheckAndAdmit(testClient, testEmail, testPassword, atExpiry.Add(time.Second))
	require.Equal(t, guard.Reject, d.Verdict)
	assert.Equal(t, 1800, d.RetryAfterSeconds) // ceil(6/5) = 2 sets
}

func TestClientIdentitiesAreIndependent(t *testing.T) {
	g := newTestGuard()
	now := failN(g, "203.0.113.9", 5, time.Now())

	d := g.CheckAndAdmit("203.0.113.9", testEmail, testPassword, now)
	require.Equal(t, guard.Reject, d.Verdict)

	d = g.CheckAndAdmit("198.51.100.7", testEmail, testPassword, now)
	assert.Equal(t, guard.Admit, d.Verdict)
}

func TestSweepExpired_RemovesOnlyStaleRecords(t *testing.T) {
	// Records idle beyond 24h go, fresher ones stay, even when the stale
	// record held a long-expired lockout.
	g := newTestGuard()
	now := time.Now()

	staleAt := failN(g, "stale-client", 5, now.Add(-25*time.Hour))
	d := g.CheckAndAdmit("stale-client", testEmail, testPassword, staleAt)
	require.Equal(t, guard.Reject, d.Verdict)
	failN(g, "fresh-client", 2, now.Add(-time.Minute))

	removed := g.SweepExpired(now)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, g.GetStats(now).TotalTracked)

	// The surviving record is untouched.
	d = g.CheckAndAdmit("fresh-client", testEmail, testPassword, now)
	assert.Equal(t, guard.Admit, d.Verdict)
}

func TestSweepExpired_Idempotent(t *testing.T) {
	g := newTestGuard()
	now := time.Now()
	failN(g, testClient, 3, now.Add(-25*time.Hour))

	assert.Equal(t, 1, g.SweepExpired(now))
	assert.Equal(t, 0, g.SweepExpired(now))
}

func TestCheckAndAdmit_MalformedInputCountsAsFailure(t *testing.T) {
	g := newTestGuard()
	now := time.Now()

	for i := 0; i < 5; i++ {
		d := g.CheckAndAdmit(testClient, "not-an-email", testPassword, now)
		require.Equal(t, guard.Invalid, d.Verdict)
		require.NotEmpty(t, d.Errors)
		now = now.Add(time.Second)
	}

	// Five malformed attempts reach the lockout threshold.
	d := g.CheckAndAdmit(testClient, testEmail, testPassword, now)
	require.Equal(t, guard.Reject, d.Verdict)
	assert.Equal(t, 900, d.RetryAfterSeconds)
}

func TestCheckAndAdmit_ValidationRules(t *testing.T) {
	cases := []struct {
		name     string
		email    string
		password string
		wantErr  string
	}{
		{"empty email", "", testPassword, "email is required"},
		{"empty password", testEmail, "", "password is required"},
		{"missing domain", "student@", testPassword, "valid address"},
		{"missing tld", "student@example", testPassword, "valid address"},
		{"missing local part", "@example.com", testPassword, "valid address"},
		{"email too long", strings.Repeat("a", 250) + "@x.com", testPassword, "at most 254"},
		{"password too long", testEmail, strings.Repeat("p", 129), "at most 128"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGuard()
			d := g.CheckAndAdmit(testClient, tc.email, tc.password, time.Now())

			require.Equal(t, guard.Invalid, d.Verdict)
			require.NotEmpty(t, d.Errors)
			assert.Contains(t, strings.Join(d.Errors, "; "), tc.wantErr)
		})
	}
}

func TestCheckAndAdmit_ActiveLockoutBeatsValidation(t *testing.T) {
	// A locked-out client gets lockout semantics even for malformed input,
	// and the rejected attempt is not counted.
	g := newTestGuard()
	now := failN(g, testClient, 5, time.Now())

	d := g.CheckAndAdmit(testClient, testEmail, testPassword, now)
	require.Equal(t, guard.Reject, d.Verdict)

	d = g.CheckAndAdmit(testClient, "garbage", "", now.Add(time.Minute))
	assert.Equal(t, guard.Reject, d.Verdict)
	assert.Empty(t, d.Errors)
}

func TestGetStats_Snapshot(t *testing.T) {
	g := newTestGuard()
	now := time.Now()

	// One locked client, one recent tracker, one old (but unswept) tracker.
	lockedAt := failN(g, "locked-client", 5, now.Add(-2*time.Minute))
	d := g.CheckAndAdmit("locked-client", testEmail, testPassword, lockedAt)
	require.Equal(t, guard.Reject, d.Verdict)

	g.RecordOutcome("recent-client", guard.Failure, now.Add(-10*time.Minute))
	g.RecordOutcome("old-client", guard.Failure, now.Add(-3*time.Hour))

	stats := g.GetStats(now)

	assert.Equal(t, 3, stats.TotalTracked)
	assert.Equal(t, 1, stats.BlockedCount)
	assert.Equal(t, 2, stats.RecentCount)
}

func TestGetStats_DoesNotMutate(t *testing.T) {
	g := newTestGuard()
	now := failN(g, testClient, 4, time.Now())

	_ = g.GetStats(now)
	_ = g.GetStats(now)

	d := g.CheckAndAdmit(testClient, testEmail, testPassword, now)
	assert.Equal(t, guard.Admit, d.Verdict)
}

func TestGuard_ConcurrentAccess(t *testing.T) {
	g := newTestGuard()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			clientID := fmt.Sprintf("10.0.0.%d", n)
			for j := 0; j < 100; j++ {
				g.CheckAndAdmit(clientID, testEmail, testPassword, now)
				g.RecordOutcome(clientID, guard.Failure, now)
				g.GetStats(now)
				g.SweepExpired(now)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8, g.GetStats(now).TotalTracked)
}

func TestRecordOutcome_EmptyClientIDIgnored(t *testing.T) {
	g := newTestGuard()
	now := time.Now()

	g.RecordOutcome("", guard.Failure, now)

	assert.Equal(t, 0, g.GetStats(now).TotalTracked)
}
