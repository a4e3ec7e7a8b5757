package guard

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"
)

const (
	// FailureThreshold is the number of consecutive failures that triggers a lockout.
	FailureThreshold = 5

	// IdleResetWindow is how long failure history stays relevant without new attempts.
	IdleResetWindow = 15 * time.Minute

	// SweepHorizon is the age past which records are garbage-collected regardless of state.
	SweepHorizon = 24 * time.Hour

	// BlockBaseMinutes and BlockCapMinutes bound the escalating lockout:
	// blockMinutes = min(BlockBaseMinutes * ceil(failureCount/5), BlockCapMinutes).
	BlockBaseMinutes = 15
	BlockCapMinutes  = 60

	MaxEmailLen    = 254
	MaxPasswordLen = 128
)

// emailPattern is a deliberately simple local@domain.tld shape check.
// Full address validation belongs to the credential verifier.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Verdict is the outcome of an admission check.
type Verdict int

const (
	// Admit lets the attempt proceed to credential verification.
	Admit Verdict = iota
	// Reject refuses the attempt because of an active or newly computed lockout.
	Reject
	// Invalid refuses the attempt because the credentials are malformed.
	// The attempt still counts toward the failure total.
	Invalid
)

// Decision is the discriminated result of CheckAndAdmit.
type Decision struct {
	Verdict           Verdict
	RetryAfterSeconds int      // set when Verdict == Reject
	Errors            []string // set when Verdict == Invalid
}

// Outcome is the result of a credential verification reported back to the guard.
type Outcome int

const (
	Success Outcome = iota
	Failure
)

// attemptRecord tracks failure history for one client identity.
type attemptRecord struct {
	failureCount  int
	lastAttemptAt time.Time
	blockedUntil  time.Time // zero when no lockout has been computed
	// blockedForCount is the failureCount at the time the last lockout was
	// computed. A new lockout is imposed only once failures accumulate past
	// it, so an expired lockout does not re-trigger by itself.
	blockedForCount int
}

// Stats is a read-only snapshot of the guard's tracking state.
type Stats struct {
	TotalTracked int `json:"total_tracked"`
	BlockedCount int `json:"blocked_count"`
	RecentCount  int `json:"recent_count"`
}

// LoginGuard decides whether a login attempt from a client identity may reach
// the credential verifier, and records outcomes afterward. State lives only in
// process memory; a restart resets all tracking. All operations are O(1) map
// work plus arithmetic under a single mutex, so a global lock is sufficient.
type LoginGuard struct {
	mu      sync.Mutex
	records map[string]*attemptRecord
	logger  *slog.Logger
}

// NewLoginGuard creates a LoginGuard. The guard owns its record map
// exclusively; callers interact only through the exported operations.
func NewLoginGuard(logger *slog.Logger) *LoginGuard {
	return &LoginGuard{
		records: make(map[string]*attemptRecord),
		logger:  logger,
	}
}

// CheckAndAdmit decides whether a login attempt from clientID may proceed.
// It also applies the input-shape checks that gate whether the attempt is
// well-formed at all; a malformed attempt counts as a failure and never
// reaches the verifier.
func (g *LoginGuard) CheckAndAdmit(clientID, email, password string, now time.Time) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec := g.records[clientID]

	if rec != nil && rec.failureCount < 0 {
		// Unreachable unless there is a bug; reset defensively.
		g.logger.Error("login guard record has negative failure count",
			slog.String("client_id", clientID),
			slog.Int("failure_count", rec.failureCount))
		delete(g.records, clientID)
		rec = nil
	}

	if rec != nil {
		// Active lockout: reject without consuming an attempt.
		if !rec.blockedUntil.IsZero() && now.Before(rec.blockedUntil) {
			retry := ceilSeconds(rec.blockedUntil.Sub(now))
			return Decision{Verdict: Reject, RetryAfterSeconds: retry}
		}

		// Idle reset: failure history is stale, purge and start over.
		if now.Sub(rec.lastAttemptAt) > IdleResetWindow {
			delete(g.records, clientID)
			rec = nil
		}
	}

	if rec != nil && rec.failureCount >= FailureThreshold && rec.failureCount > rec.blockedForCount {
		blockMinutes := blockMinutesFor(rec.failureCount)
		blockedUntil := now.Add(time.Duration(blockMinutes) * time.Minute)
		// blockedUntil never decreases once set.
		if blockedUntil.After(rec.blockedUntil) {
			rec.blockedUntil = blockedUntil
		}
		rec.blockedForCount = rec.failureCount
		rec.lastAttemptAt = now

		g.logger.Warn("login lockout imposed",
			slog.String("client_id", clientID),
			slog.Int("failure_count", rec.failureCount),
			slog.Int("block_minutes", blockMinutes))

		return Decision{Verdict: Reject, RetryAfterSeconds: blockMinutes * 60}
	}

	if errs := validateShape(email, password); len(errs) > 0 {
		// Malformed input still counts as a failed attempt; this discourages
		// enumeration via deliberately broken requests.
		g.recordFailureLocked(clientID, now)
		return Decision{Verdict: Invalid, Errors: errs}
	}

	return Decision{Verdict: Admit}
}

// RecordOutcome records the verifier's result for clientID. Success clears all
// tracking; Failure increments the failure count. Lockout computation is
// deferred to the next CheckAndAdmit once the threshold is crossed.
func (g *LoginGuard) RecordOutcome(clientID string, outcome Outcome, now time.Time) {
	if clientID == "" {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if outcome == Success {
		delete(g.records, clientID)
		return
	}

	g.recordFailureLocked(clientID, now)
}

// SweepExpired removes every record idle for longer than SweepHorizon,
// regardless of lockout state. Idempotent; safe to run concurrently with the
// per-key operations since it takes the same lock.
func (g *LoginGuard) SweepExpired(now time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for clientID, rec := range g.records {
		if now.Sub(rec.lastAttemptAt) > SweepHorizon {
			delete(g.records, clientID)
			removed++
		}
	}
	return removed
}

// GetStats returns a snapshot for observability. Never mutates state.
func (g *LoginGuard) GetStats(now time.Time) Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	stats := Stats{TotalTracked: len(g.records)}
	for _, rec := range g.records {
		if !rec.blockedUntil.IsZero() && rec.blockedUntil.After(now) {
			stats.BlockedCount++
		}
		if now.Sub(rec.lastAttemptAt) <= time.Hour {
			stats.RecentCount++
		}
	}
	return stats
}

// recordFailureLocked upserts the record for clientID with one more failure.
// Caller must hold g.mu.
func (g *LoginGuard) recordFailureLocked(clientID string, now time.Time) {
	rec := g.records[clientID]
	if rec == nil {
		rec = &attemptRecord{}
		g.records[clientID] = rec
	}
	rec.failureCount++
	rec.lastAttemptAt = now
}

// blockMinutesFor computes the escalating lockout duration in minutes.
// The multiplier and cap are a compatibility contract: 15, 30, 45, then 60.
func blockMinutesFor(failureCount int) int {
	sets := (failureCount + FailureThreshold - 1) / FailureThreshold
	minutes := BlockBaseMinutes * sets
	if minutes > BlockCapMinutes {
		minutes = BlockCapMinutes
	}
	return minutes
}

// ceilSeconds converts a duration to whole seconds, rounding up.
func ceilSeconds(d time.Duration) int {
	secs := d / time.Second
	if d%time.Second != 0 {
		secs++
	}
	return int(secs)
}

// validateShape applies the login input-shape rules. Returns one message per
// violated rule; empty means well-formed.
func validateShape(email, password string) []string {
	var errs []string

	email = strings.TrimSpace(email)
	switch {
	case email == "":
		errs = append(errs, "email is required")
	case len(email) > MaxEmailLen:
		errs = append(errs, fmt.Sprintf("email must be at most %d characters", MaxEmailLen))
	case !emailPattern.MatchString(email):
		errs = append(errs, "email must be a valid address")
	}

	switch {
	case password == "":
		errs = append(errs, "password is required")
	case len(password) > MaxPasswordLen:
		errs = append(errs, fmt.Sprintf("password must be at most %d characters", MaxPasswordLen))
	}

	return errs
}
