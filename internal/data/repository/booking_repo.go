package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"interview-booking/internal/data/entity"
	"interview-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingFilter struct {
	UserID    *uuid.UUID
	CompanyID *uuid.UUID
	Limit     int // 0 means no limit
	Offset    int
}

type BookingRepository interface {
	// CreateWithinLimit inserts booking unless the owner already booked the
	// same company on the same date or already holds limit bookings. The
	// checks and the insert share one transaction serialised per user.
	CreateWithinLimit(ctx context.Context, booking *entity.Booking, limit int) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindDetailByID(ctx context.Context, id uuid.UUID) (*entity.BookingDetail, error)
	FindAll(ctx context.Context, filter BookingFilter) ([]*entity.BookingDetail, error)
	Count(ctx context.Context, filter BookingFilter) (int64, error)
	FindByDate(ctx context.Context, date time.Time) ([]*entity.BookingDetail, error)
	// Update moves the booking to a new date, rejecting a duplicate of another booking.
	Update(ctx context.Context, booking *entity.Booking) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type bookingRepository struct {
	db     database.PgxIface
	window entity.BookingWindow
	log    *zap.Logger
}

func NewBookingRepository(db database.PgxIface, window entity.BookingWindow, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:     db,
		window: window,
		log:    log.With(zap.String("repository", "booking")),
	}
}

const bookingDetailSelect = `
	SELECT b.id, b.user_id, b.company_id, b.date, b.created_at,
	       COALESCE(u.name, ''), COALESCE(u.email, ''),
	       c.id, c.name, c.address, c.website, c.description, c.telephone, c.created_at, c.updated_at
	FROM bookings b
	LEFT JOIN users u ON u.id = b.user_id
	JOIN companies c ON c.id = b.company_id
`

func (r *bookingRepository) CreateWithinLimit(ctx context.Context, booking *entity.Booking, limit int) error {
	if !r.window.Contains(booking.Date) {
		return ErrOutsideWindow
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return storeError(err, "begin create booking")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockUser(ctx, tx, booking.UserID); err != nil {
		return err
	}

	duplicate, err := existsDuplicate(ctx, tx, booking)
	if err != nil {
		return err
	}
	if duplicate {
		return ErrDuplicateBooking
	}

	var count int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE user_id = $1`, booking.UserID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err), zap.String("user_id", booking.UserID.String()))
		return storeError(err, "count bookings for user %s", booking.UserID)
	}
	if count >= limit {
		return ErrBookingLimitReached
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (id, user_id, company_id, date, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		booking.ID,
		booking.UserID,
		booking.CompanyID,
		booking.Date,
		booking.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateBooking
	}
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("user_id", booking.UserID.String()),
			zap.String("company_id", booking.CompanyID.String()),
		)
		return storeError(err, "create booking")
	}

	if err := tx.Commit(ctx); err != nil {
		return storeError(err, "commit create booking")
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `
		SELECT id, user_id, company_id, date, created_at
		FROM bookings
		WHERE id = $1
	`

	var booking entity.Booking
	err := r.db.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.CompanyID,
		&booking.Date,
		&booking.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, storeError(err, "find booking by ID %s", id)
	}

	return &booking, nil
}

func (r *bookingRepository) FindDetailByID(ctx context.Context, id uuid.UUID) (*entity.BookingDetail, error) {
	detail, err := scanBookingDetail(r.db.QueryRow(ctx, bookingDetailSelect+` WHERE b.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking detail", zap.Error(err), zap.String("booking_id", id.String()))
		return nil, storeError(err, "find booking detail %s", id)
	}
	return detail, nil
}

func (r *bookingRepository) FindAll(ctx context.Context, filter BookingFilter) ([]*entity.BookingDetail, error) {
	where, args := filter.where()

	var queryBuilder strings.Builder
	queryBuilder.WriteString(bookingDetailSelect)
	queryBuilder.WriteString(where)
	queryBuilder.WriteString(" ORDER BY b.created_at, b.id")

	if filter.Limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2))
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		r.log.Error("Failed to find bookings", zap.Error(err))
		return nil, storeError(err, "find bookings")
	}
	defer rows.Close()

	return collectBookingDetails(rows)
}

func (r *bookingRepository) Count(ctx context.Context, filter BookingFilter) (int64, error) {
	where, args := filter.where()

	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings b`+where, args...).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err))
		return 0, storeError(err, "count bookings")
	}

	return count, nil
}

func (r *bookingRepository) FindByDate(ctx context.Context, date time.Time) ([]*entity.BookingDetail, error) {
	rows, err := r.db.Query(ctx, bookingDetailSelect+` WHERE b.date = $1 ORDER BY b.created_at, b.id`, date)
	if err != nil {
		r.log.Error("Failed to find bookings by date",
			zap.Error(err),
			zap.String("date", date.Format(entity.DateLayout)),
		)
		return nil, storeError(err, "find bookings on %s", date.Format(entity.DateLayout))
	}
	defer rows.Close()

	return collectBookingDetails(rows)
}

func (r *bookingRepository) Update(ctx context.Context, booking *entity.Booking) error {
	if !r.window.Contains(booking.Date) {
		return ErrOutsideWindow
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return storeError(err, "begin update booking")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockUser(ctx, tx, booking.UserID); err != nil {
		return err
	}

	duplicate, err := existsDuplicate(ctx, tx, booking)
	if err != nil {
		return err
	}
	if duplicate {
		return ErrDuplicateBooking
	}

	result, err := tx.Exec(ctx, `
		UPDATE bookings
		SET date = $2
		WHERE id = $1
	`,
		booking.ID,
		booking.Date,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateBooking
	}
	if err != nil {
		r.log.Error("Failed to update booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return storeError(err, "update booking %s", booking.ID)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return storeError(err, "commit update booking")
	}

	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return storeError(err, "delete booking %s", id)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	r.log.Info("Booking deleted", zap.String("booking_id", id.String()))
	return nil
}

// lockUser serialises booking writes of one user until the transaction ends.
func lockUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, userID.String()); err != nil {
		return storeError(err, "lock bookings of user %s", userID)
	}
	return nil
}

// existsDuplicate reports whether another booking holds the same user, company and date.
func existsDuplicate(ctx context.Context, tx pgx.Tx, booking *entity.Booking) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE user_id = $1 AND company_id = $2 AND date = $3 AND id <> $4
		)
	`,
		booking.UserID,
		booking.CompanyID,
		booking.Date,
		booking.ID,
	).Scan(&exists)
	if err != nil {
		return false, storeError(err, "check duplicate booking")
	}
	return exists, nil
}

func (f BookingFilter) where() (string, []any) {
	var conds []string
	var args []any

	if f.UserID != nil {
		args = append(args, *f.UserID)
		conds = append(conds, fmt.Sprintf("b.user_id = $%d", len(args)))
	}
	if f.CompanyID != nil {
		args = append(args, *f.CompanyID)
		conds = append(conds, fmt.Sprintf("b.company_id = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanBookingDetail(row pgx.Row) (*entity.BookingDetail, error) {
	var d entity.BookingDetail
	var c entity.Company
	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.CompanyID,
		&d.Date,
		&d.CreatedAt,
		&d.UserName,
		&d.UserEmail,
		&c.ID,
		&c.Name,
		&c.Address,
		&c.Website,
		&c.Description,
		&c.Telephone,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Company = &c
	return &d, nil
}

func collectBookingDetails(rows pgx.Rows) ([]*entity.BookingDetail, error) {
	var details []*entity.BookingDetail
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		details = append(details, d)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError(err, "iterate booking rows")
	}

	return details, nil
}
