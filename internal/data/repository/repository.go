package repository

import (
	"context"
	"errors"
	"fmt"

	"interview-booking/internal/data/entity"
	"interview-booking/pkg/apperror"
	"interview-booking/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned by writes that matched no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate")
	// ErrDuplicateBooking is returned when the user already booked the company on that date.
	ErrDuplicateBooking = errors.New("booking already exists for company and date")
	// ErrBookingLimitReached is returned when the user holds the maximum number of bookings.
	ErrBookingLimitReached = errors.New("booking limit reached")
	// ErrOutsideWindow is returned when a booking date falls outside the booking window.
	ErrOutsideWindow = errors.New("booking date outside booking window")
)

type Repository struct {
	User    UserRepository
	Session SessionRepository
	OTP     OTPRepository
	Company CompanyRepository
	Booking BookingRepository
}

func NewRepository(db database.PgxIface, window entity.BookingWindow, log *zap.Logger) *Repository {
	return &Repository{
		User:    NewUserRepository(db, log),
		Session: NewSessionRepository(db, log),
		OTP:     NewOTPRepository(db, log),
		Company: NewCompanyRepository(db, log),
		Booking: NewBookingRepository(db, window, log),
	}
}

// storeError wraps a pgx failure. Timeouts, cancellations and connection
// failures become apperror.Unavailable so callers can retry.
func storeError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)

	var connErr *pgconn.ConnectError
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		pgconn.Timeout(err),
		pgconn.SafeToRetry(err),
		errors.As(err, &connErr):
		return apperror.Unavailable(err, "%s", msg)
	}

	return fmt.Errorf("%s: %w", msg, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
