package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"interview-booking/internal/data/entity"
	"interview-booking/internal/data/repository"
	"interview-booking/pkg/notify"

	"go.uber.org/zap"
)

const reminderSubject = "Reminder"

// ReminderReport summarises one reminder run.
type ReminderReport struct {
	Date    time.Time
	Scanned int
	Sent    int
	Skipped int
	Failed  int
}

type ReminderService interface {
	// SendDailyReminders notifies every user holding a booking for today.
	// A failed notification is logged and does not stop the run.
	SendDailyReminders(ctx context.Context) (ReminderReport, error)
}

type reminderService struct {
	bookingRepo repository.BookingRepository
	notifier    notify.Notifier
	loc         *time.Location
	now         func() time.Time
	log         *zap.Logger
}

func NewReminderService(bookingRepo repository.BookingRepository, notifier notify.Notifier, loc *time.Location, now func() time.Time, log *zap.Logger) ReminderService {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}

	return &reminderService{
		bookingRepo: bookingRepo,
		notifier:    notifier,
		loc:         loc,
		now:         now,
		log:         log.With(zap.String("service", "reminder")),
	}
}

func (s *reminderService) SendDailyReminders(ctx context.Context) (ReminderReport, error) {
	today := entity.DateOnly(s.now(), s.loc)
	report := ReminderReport{Date: today}

	bookings, err := s.bookingRepo.FindByDate(ctx, today)
	if err != nil {
		s.log.Error("Failed to load bookings for reminders",
			zap.Error(err),
			zap.String("date", today.Format(entity.DateLayout)))
		return report, fmt.Errorf("load bookings for %s: %w", today.Format(entity.DateLayout), err)
	}

	report.Scanned = len(bookings)

	for _, b := range bookings {
		if err := ctx.Err(); err != nil {
			s.log.Warn("Reminder run interrupted", zap.Error(err), zap.Int("sent", report.Sent))
			return report, err
		}

		email := strings.TrimSpace(b.UserEmail)
		if email == "" {
			report.Skipped++
			s.log.Warn("No email for booking owner, reminder skipped",
				zap.String("booking_id", b.ID.String()),
				zap.String("user_id", b.UserID.String()))
			continue
		}

		msg := notify.Message{
			To:      email,
			Subject: reminderSubject,
			Body:    fmt.Sprintf("Hey %s, you have a booking scheduled today.", b.UserName),
		}

		if err := s.notifier.Notify(ctx, msg); err != nil {
			report.Failed++
			s.log.Error("Failed to send reminder",
				zap.Error(err),
				zap.String("booking_id", b.ID.String()),
				zap.String("email", email))
			continue
		}

		report.Sent++
	}

	s.log.Info("Reminder run finished",
		zap.String("date", today.Format(entity.DateLayout)),
		zap.Int("scanned", report.Scanned),
		zap.Int("sent", report.Sent),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))

	return report, nil
}
