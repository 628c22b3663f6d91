package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"mentormind/internal/database"
	"mentormind/internal/progression"
)

var (
	ErrInvalidDuration      = errors.New("focus duration must be between 1 and 1440 minutes")
	ErrTaskAlreadyCompleted = errors.New("task already completed")
	ErrRateLimited          = errors.New("generation rate limit exceeded, try again later")
	ErrGenerationDisabled   = errors.New("no generation backend configured")
	ErrTextTooShort         = errors.New("text too short to summarize")
	ErrInvalidGeneration    = errors.New("generated content is invalid")
	ErrUserExists           = errors.New("username or email already taken")
	ErrInvalidCredentials   = errors.New("invalid username or password")
)

// MaxFocusMinutes caps a single focus session at one day
const MaxFocusMinutes = 24 * 60

// Deps holds what every service needs: the database, the clock and the
// zone that decides which calendar day "today" is.
type Deps struct {
	DB       *database.DB
	Location *time.Location
	Now      func() time.Time
	Logger   *zap.Logger
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) location() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.Local
}

// today returns the current calendar day in the configured zone
func (d Deps) today() progression.Date {
	return progression.DateOf(d.now().In(d.location()))
}

func (d Deps) logger() *zap.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return zap.NewNop()
}

// runEvent applies fn and every reward it grants in one transaction, then
// settles badges. Nothing is persisted when any step fails.
func (d Deps) runEvent(ctx context.Context, userID int64, fn func(tx *database.Tx, a *awarder) error) (*Outcome, error) {
	var out *Outcome
	err := d.DB.WithTx(ctx, func(tx *database.Tx) error {
		a, err := newAwarder(ctx, tx, userID, d.now())
		if err != nil {
			return err
		}
		if err := fn(tx, a); err != nil {
			return err
		}
		if err := a.settle(ctx); err != nil {
			return err
		}
		out = a.outcome()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
