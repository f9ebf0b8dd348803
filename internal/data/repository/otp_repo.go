package repository

import (
	"context"
	"errors"

	"interview-booking/internal/data/entity"
	"interview-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// OTPRepository stores one-time codes. Only the newest code per email and
// type is usable, and a code can be consumed once.
type OTPRepository interface {
	Issue(ctx context.Context, otp *entity.OTP) error
	Consume(ctx context.Context, email, code string, otpType entity.OTPType) (*entity.OTP, error)
}

type otpRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOTPRepository(db database.PgxIface, log *zap.Logger) OTPRepository {
	return &otpRepository{
		db:  db,
		log: log.With(zap.String("repository", "otp")),
	}
}

// Issue retires any pending code for the same email and type, then stores otp.
func (r *otpRepository) Issue(ctx context.Context, otp *entity.OTP) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return storeError(err, "begin issue OTP")
	}
	defer tx.Rollback(ctx)

	retired, err := tx.Exec(ctx, `
		UPDATE otps SET is_used = true
		WHERE email = $1 AND otp_type = $2 AND is_used = false`,
		otp.Email, otp.OTPType)
	if err != nil {
		return storeError(err, "retire pending OTPs for %s", otp.Email)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO otps (id, user_id, email, otp_code, otp_type,
		                  expires_at, is_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, $7)`,
		otp.ID,
		otp.UserID,
		otp.Email,
		otp.OTPCode,
		otp.OTPType,
		otp.ExpiresAt,
		otp.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to issue OTP",
			zap.Error(err),
			zap.String("email", otp.Email),
			zap.String("otp_type", string(otp.OTPType)),
		)
		return storeError(err, "issue OTP for %s", otp.Email)
	}

	if err := tx.Commit(ctx); err != nil {
		return storeError(err, "commit issue OTP")
	}

	if n := retired.RowsAffected(); n > 0 {
		r.log.Debug("Retired pending OTPs", zap.String("email", otp.Email), zap.Int64("count", n))
	}
	return nil
}

// Consume marks a matching unexpired code as used and returns it, or nil when
// no such code exists. Two concurrent calls cannot both succeed.
func (r *otpRepository) Consume(ctx context.Context, email, code string, otpType entity.OTPType) (*entity.OTP, error) {
	query := `
		UPDATE otps SET is_used = true
		WHERE id = (
			SELECT id FROM otps
			WHERE email = $1
			  AND otp_code = $2
			  AND otp_type = $3
			  AND is_used = false
			  AND expires_at > NOW()
			ORDER BY created_at DESC
			LIMIT 1
			FOR UPDATE
		) AND is_used = false
		RETURNING id, user_id, email, otp_code, otp_type, expires_at, is_used, created_at
	`

	var otp entity.OTP
	err := r.db.QueryRow(ctx, query, email, code, otpType).Scan(
		&otp.ID,
		&otp.UserID,
		&otp.Email,
		&otp.OTPCode,
		&otp.OTPType,
		&otp.ExpiresAt,
		&otp.IsUsed,
		&otp.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to consume OTP",
			zap.Error(err),
			zap.String("email", email),
			zap.String("otp_type", string(otpType)),
		)
		return nil, storeError(err, "consume OTP for %s", email)
	}

	return &otp, nil
}
