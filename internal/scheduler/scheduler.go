package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Xebarter/Leap-sub002/internal/config"
	"github.com/Xebarter/Leap-sub002/internal/service/occupancy"
)

// ExpirySweeper runs the daily occupancy reminder pass.
type ExpirySweeper interface {
	SweepExpiring(ctx context.Context) (occupancy.SweepResult, error)
}

// DraftPurger drops building drafts that were abandoned.
type DraftPurger interface {
	PurgeDrafts(ttl time.Duration) int
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron    *cron.Cron
	sweeper ExpirySweeper
	purger  DraftPurger
	cfg     config.Config
	logger  *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
func NewScheduler(cfg config.Config, sweeper ExpirySweeper, purger DraftPurger, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load scheduler timezone: %w", err)
	}

	// Standard 5-field cron expressions; descriptors like @hourly are accepted too.
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:    c,
		sweeper: sweeper,
		purger:  purger,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("reminder_schedule", s.cfg.Scheduler.ReminderSchedule),
		zap.String("draft_sweep_schedule", s.cfg.Scheduler.DraftSweepSchedule))

	if _, err := s.cron.AddFunc(s.cfg.Scheduler.ReminderSchedule, s.sweepExpiring); err != nil {
		return fmt.Errorf("schedule expiry reminders: %w", err)
	}
	if _, err := s.cron.AddFunc(s.cfg.Scheduler.DraftSweepSchedule, s.purgeDrafts); err != nil {
		return fmt.Errorf("schedule draft purge: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweepExpiring() {
	s.logger.Info("running occupancy expiry sweep")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := s.sweeper.SweepExpiring(ctx); err != nil {
		s.logger.Error("occupancy expiry sweep failed", zap.Error(err))
	}
}

func (s *Scheduler) purgeDrafts() {
	removed := s.purger.PurgeDrafts(s.cfg.Drafts.TTL)
	s.logger.Debug("draft purge finished", zap.Int("removed", removed))
}
