package usecase

import (
	"fmt"
	"time"

	"interview-booking/internal/data/entity"
	"interview-booking/internal/data/repository"
	"interview-booking/pkg/apperror"
	"interview-booking/pkg/notify"
	"interview-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth     AuthService
	User     UserService
	Company  CompanyService
	Booking  BookingService
	Reminder ReminderService
}

func NewService(
	repo *repository.Repository,
	window entity.BookingWindow,
	notifier notify.Notifier,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	loc := config.App.Location()

	return &Service{
		Auth:    NewAuthService(repo, notifier, config, log),
		User:    NewUserService(repo.User, log),
		Company: NewCompanyService(repo.Company, log),
		Booking: NewBookingService(repo, BookingPolicy{
			Window:     window,
			MaxPerUser: config.Booking.MaxPerUser,
			Location:   loc,
		}, time.Now, log),
		Reminder: NewReminderService(repo.Booking, notifier, loc, time.Now, log),
	}
}

// storeFailure passes retryable store errors through and logs the rest as
// internal failures.
func storeFailure(log *zap.Logger, err error, operation string) error {
	if apperror.KindOf(err) == apperror.KindUnavailable {
		log.Warn("Store unavailable", zap.String("operation", operation), zap.Error(err))
		return err
	}

	log.Error("Failed to "+operation, zap.Error(err))
	return fmt.Errorf("%s: %w", operation, err)
}
