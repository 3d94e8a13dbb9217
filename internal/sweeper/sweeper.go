// Package sweeper periodically purges expired sessions.
package sweeper

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/and161185/helpdesk/internal/repository"
)

// DefaultSchedule runs the sweep once an hour.
const DefaultSchedule = "@hourly"

// sweepTimeout bounds one run.
const sweepTimeout = time.Minute

// Sweeper deletes sessions whose expiry has passed. Expired sessions never
// resolve, so sweeping only reclaims storage.
type Sweeper struct {
	store    repository.Store
	cron     *cron.Cron
	schedule string
	log      *zap.Logger
}

// New creates a sweeper for the given cron schedule.
func New(store repository.Store, schedule string, log *zap.Logger) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Sweeper{store: store, cron: cron.New(), schedule: schedule, log: log}
}

// Start registers the sweep job and starts the scheduler.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			s.log.Error("failed to sweep sessions", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("session sweeper started", zap.String("schedule", s.schedule))
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("session sweeper stopped")
}

// Sweep deletes expired sessions once.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	var n int64
	err := s.store.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		n, err = r.Sessions().DeleteExpired(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("expired sessions removed", zap.Int64("count", n))
	}
	return n, nil
}
