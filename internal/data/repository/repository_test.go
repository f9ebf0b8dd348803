package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"interview-booking/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestStoreErrorClassifiesTransientFailures(t *testing.T) {
	tests := []struct {
		description string
		err         error
		expected    apperror.Kind
	}{
		{"deadline", context.DeadlineExceeded, apperror.KindUnavailable},
		{"canceled", fmt.Errorf("query: %w", context.Canceled), apperror.KindUnavailable},
		{"syntax error", &pgconn.PgError{Code: "42601"}, apperror.KindInternal},
		{"plain", errors.New("boom"), apperror.KindInternal},
	}

	for _, test := range tests {
		err := storeError(test.err, "find booking %s", "42")
		assert.Equalf(t, test.expected, apperror.KindOf(err), test.description)
		assert.ErrorIsf(t, err, test.err, test.description)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(nil))
}

func TestBookingFilterWhere(t *testing.T) {
	userID := uuid.New()
	companyID := uuid.New()

	where, args := BookingFilter{}.where()
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = BookingFilter{UserID: &userID}.where()
	assert.Equal(t, " WHERE b.user_id = $1", where)
	assert.Equal(t, []any{userID}, args)

	where, args = BookingFilter{UserID: &userID, CompanyID: &companyID}.where()
	assert.Equal(t, " WHERE b.user_id = $1 AND b.company_id = $2", where)
	assert.Equal(t, []any{userID, companyID}, args)
}

func TestCompanyNameFilter(t *testing.T) {
	where, args := companyNameFilter(nil)
	assert.Empty(t, where)
	assert.Nil(t, args)

	blank := "  "
	where, _ = companyNameFilter(&blank)
	assert.Empty(t, where)

	name := " acme "
	where, args = companyNameFilter(&name)
	assert.Equal(t, " WHERE name ILIKE $1", where)
	assert.Equal(t, []any{"%acme%"}, args)
}
