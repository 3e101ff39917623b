// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rosenbach/stundenplan-api/pkg/spool"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	spool    *spool.Spool
	schedule string
	maxAge   time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a new job scheduler. schedule is a cron spec for the
// spool sweep; maxAge is how old a spool file must be before it is removed.
func NewScheduler(sp *spool.Spool, schedule string, maxAge time.Duration, logger *slog.Logger) *Scheduler {
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		spool:    sp,
		schedule: schedule,
		maxAge:   maxAge,
		logger:   logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.sweepSpool)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the spool sweep (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.sweepSpool()
}

// sweepSpool removes spool files left behind by interrupted requests.
func (s *Scheduler) sweepSpool() {
	removed, err := s.spool.Sweep(s.maxAge)
	if err != nil {
		s.logger.Error("failed to sweep spool", slog.Any("error", err))
		return
	}

	if removed > 0 {
		s.logger.Info("spool sweep completed",
			slog.String("dir", s.spool.Dir()),
			slog.Int("files_removed", removed),
		)
	} else {
		s.logger.Debug("spool sweep completed, nothing to remove",
			slog.String("dir", s.spool.Dir()),
		)
	}
}
