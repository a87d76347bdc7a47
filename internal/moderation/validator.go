package moderation

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"echopages/internal/config"
	"echopages/internal/history"
)

// Rejection is the recoverable outcome of a failed local check. It carries a
// user-facing reason and never represents a system error.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

const (
	reasonTooShort  = "Fragment is too brief to echo."
	reasonTooLong   = "Resonance is too loud; simplify your fragment."
	reasonJunk      = "Structural static detected (junk patterns)."
	reasonBlacklist = "Forbidden vocabulary detected."
	reasonDailyCap  = "Your daily resonance is exhausted. Return with the next moon."
)

// junkRunLength is the repeated-character run treated as spam. A cheap
// heuristic, not an anti-abuse system.
const junkRunLength = 6

// Validator performs the local, advisory checks that gate a submission
// before any network call. All of its state lives on the acting client;
// it is a UX nicety, not server-side enforcement.
type Validator struct {
	settings config.Moderation
	store    *history.Store
	now      func() time.Time
}

// NewValidator builds a validator over the local history store.
func NewValidator(settings config.Moderation, store *history.Store) *Validator {
	return &Validator{
		settings: settings,
		store:    store,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Tests use this to pin "now".
func (v *Validator) WithClock(now func() time.Time) *Validator {
	if now != nil {
		v.now = now
	}
	return v
}

// ValidateContent runs the synchronous content checks in fixed order:
// length floor, length ceiling, junk run, blacklist. The first failure wins.
func (v *Validator) ValidateContent(text string) error {
	trimmed := strings.TrimSpace(text)

	if len([]rune(trimmed)) < v.settings.MinLength {
		return &Rejection{Reason: reasonTooShort}
	}
	if len([]rune(trimmed)) > v.settings.MaxLength {
		return &Rejection{Reason: reasonTooLong}
	}
	if hasJunkRun(trimmed, junkRunLength) {
		return &Rejection{Reason: reasonJunk}
	}

	lowered := strings.ToLower(trimmed)
	for _, term := range v.settings.Blacklist {
		if term != "" && strings.Contains(lowered, term) {
			return &Rejection{Reason: reasonBlacklist}
		}
	}
	return nil
}

// CheckRate enforces the minimum inter-post interval and the daily cap for
// the user. Interval violations report the remaining wait, rounded up.
func (v *Validator) CheckRate(ctx context.Context, userID string) error {
	now := v.now()

	last, ok, err := v.store.LastPostAt(ctx, userID)
	if err != nil {
		return fmt.Errorf("check rate limit: %w", err)
	}
	minInterval := time.Duration(v.settings.MinIntervalSeconds) * time.Second
	if ok {
		if elapsed := now.Sub(last); elapsed < minInterval {
			remaining := int(math.Ceil((minInterval - elapsed).Seconds()))
			return &Rejection{Reason: fmt.Sprintf("Frequency flooding detected. Re-tune in %ds.", remaining)}
		}
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	count, err := v.store.CountSince(ctx, userID, midnight)
	if err != nil {
		return fmt.Errorf("check daily limit: %w", err)
	}
	if count >= v.settings.DailyLimit {
		return &Rejection{Reason: reasonDailyCap}
	}
	return nil
}

// RecordPost marks an accepted submission. Callers invoke it exactly once
// per successful persist; a failed persist must not consume the budget.
func (v *Validator) RecordPost(ctx context.Context, userID string) error {
	return v.store.RecordPost(ctx, userID, v.now(), v.settings.HistoryLimit)
}

// hasJunkRun reports whether any single rune repeats at least runLength
// times consecutively. RE2 has no backreferences, so the scan is manual.
func hasJunkRun(text string, runLength int) bool {
	var (
		previous rune
		run      int
	)
	for _, r := range text {
		if r == previous {
			run++
			if run >= runLength {
				return true
			}
			continue
		}
		previous = r
		run = 1
	}
	return false
}
