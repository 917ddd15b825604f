package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ErrAlreadyRunning is returned when a reset is triggered while another is
// still in progress.
var ErrAlreadyRunning = errors.New("credit reset already running")

// Resetter tops up daily credits for every profile.
type Resetter interface {
	ResetDaily(ctx context.Context, allowance int) (int64, error)
}

// CreditReset restores every profile to its daily allowance.
type CreditReset struct {
	profiles  Resetter
	allowance int
	timeout   time.Duration
	logger    zerolog.Logger

	mu sync.Mutex
}

func NewCreditReset(profiles Resetter, allowance int, timeout time.Duration, logger zerolog.Logger) *CreditReset {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &CreditReset{profiles: profiles, allowance: allowance, timeout: timeout, logger: logger}
}

// Run performs one reset. Overlapping calls fail fast with ErrAlreadyRunning.
func (c *CreditReset) Run(ctx context.Context) (int64, error) {
	if !c.mu.TryLock() {
		return 0, ErrAlreadyRunning
	}
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	n, err := c.profiles.ResetDaily(ctx, c.allowance)
	if err != nil {
		return 0, fmt.Errorf("reset daily credits: %w", err)
	}
	c.logger.Info().
		Int64("profiles", n).
		Int("allowance", c.allowance).
		Dur("took", time.Since(start)).
		Msg("daily credits reset")
	return n, nil
}

// Schedule registers the reset on c using a six-field cron spec (with
// seconds). Runs are bound to ctx.
func (c *CreditReset) Schedule(ctx context.Context, sched *cron.Cron, spec string) (cron.EntryID, error) {
	return sched.AddFunc(spec, func() {
		if _, err := c.Run(ctx); err != nil {
			if errors.Is(err, ErrAlreadyRunning) {
				c.logger.Warn().Msg("skipping credit reset, previous run still active")
				return
			}
			c.logger.Error().Err(err).Msg("credit reset failed")
		}
	})
}

// NewCron builds a scheduler that accepts seconds in its specs and logs
// through logger.
func NewCron(logger zerolog.Logger, loc *time.Location) *cron.Cron {
	if loc == nil {
		loc = time.UTC
	}
	cronLogger := cron.PrintfLogger(&logger)
	return cron.New(
		cron.WithSeconds(),
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger)),
	)
}
