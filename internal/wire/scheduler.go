package wire

import (
	"context"
	"fmt"
	"time"

	"interview-booking/internal/data/repository"
	"interview-booking/internal/usecase"
	"interview-booking/pkg/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	sessionCleanupSchedule = "@daily"
	sessionRetention       = 7 * 24 * time.Hour
)

// Scheduler runs the background jobs: daily reminders and expired session cleanup.
type Scheduler struct {
	cron     *cron.Cron
	reminder usecase.ReminderService
	sessions repository.SessionRepository
	timeout  time.Duration
	log      *zap.Logger
}

func NewScheduler(
	reminder usecase.ReminderService,
	sessions repository.SessionRepository,
	config *utils.Config,
	log *zap.Logger,
) (*Scheduler, error) {
	timeout := config.Reminder.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(config.App.Location()),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		reminder: reminder,
		sessions: sessions,
		timeout:  timeout,
		log:      log.With(zap.String("component", "scheduler")),
	}

	if config.Reminder.Enabled {
		if _, err := s.cron.AddFunc(config.Reminder.Cron, s.runReminders); err != nil {
			return nil, fmt.Errorf("invalid REMINDER_CRON %q: %w", config.Reminder.Cron, err)
		}
	}

	if _, err := s.cron.AddFunc(sessionCleanupSchedule, s.cleanSessions); err != nil {
		return nil, fmt.Errorf("schedule session cleanup: %w", err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.log.Info("Scheduler started", zap.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()

	select {
	case <-done.Done():
		s.log.Info("Scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("Scheduler stop timed out, jobs still running")
	}
}

func (s *Scheduler) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	// the reminder service logs its own summary
	if _, err := s.reminder.SendDailyReminders(ctx); err != nil {
		s.log.Error("Reminder scan failed", zap.Error(err))
	}
}

func (s *Scheduler) cleanSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.sessions.CleanExpiredSessions(ctx, sessionRetention)
	if err != nil {
		s.log.Error("Session cleanup failed", zap.Error(err))
		return
	}
	s.log.Info("Expired sessions removed", zap.Int64("count", n))
}
