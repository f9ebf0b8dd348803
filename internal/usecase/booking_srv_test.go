package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"interview-booking/internal/data/entity"
	"interview-booking/internal/dto/request"
	"interview-booking/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type bookingFixture struct {
	store   *memStore
	service BookingService
	user    entity.Principal
	admin   entity.Principal
	company *entity.Company
}

func day(d int) time.Time {
	return time.Date(2025, 5, d, 0, 0, 0, 0, time.UTC)
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	window, err := entity.NewBookingWindow("2025-05-10", "2025-05-13")
	require.NoError(t, err)

	store := newMemStore(window)
	u := store.addUser("Nok", "nok@example.com", entity.RoleUser)
	a := store.addUser("Admin", "admin@example.com", entity.RoleAdmin)

	// "today" is 2025-05-11
	clock := func() time.Time { return time.Date(2025, 5, 11, 10, 0, 0, 0, time.UTC) }

	return &bookingFixture{
		store: store,
		service: NewBookingService(store.repository(), BookingPolicy{
			Window:     window,
			MaxPerUser: 3,
			Location:   time.UTC,
		}, clock, zap.NewNop()),
		user:    entity.Principal{UserID: u.ID, Role: entity.RoleUser},
		admin:   entity.Principal{UserID: a.ID, Role: entity.RoleAdmin},
		company: store.addCompany("Acme"),
	}
}

func (f *bookingFixture) newUser(name string) entity.Principal {
	u := f.store.addUser(name, name+"@example.com", entity.RoleUser)
	return entity.Principal{UserID: u.ID, Role: entity.RoleUser}
}

func createReq(companyID uuid.UUID, date string) *request.CreateBookingRequest {
	return &request.CreateBookingRequest{CompanyID: companyID.String(), Date: date}
}

func TestCreateBookingCheckOrder(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	tests := []struct {
		description string
		principal   entity.Principal
		req         *request.CreateBookingRequest
		expected    apperror.Kind
	}{
		{"admin is refused before anything else", f.admin, createReq(uuid.New(), "garbage"), apperror.KindForbidden},
		{"unknown company before bad date", f.user, createReq(uuid.New(), "garbage"), apperror.KindNotFound},
		{"malformed company id", f.user, &request.CreateBookingRequest{CompanyID: "acme", Date: "2025-05-11"}, apperror.KindNotFound},
		{"unparseable date", f.user, createReq(f.company.ID, "11/05/2025"), apperror.KindInvalidInput},
		{"missing date", f.user, createReq(f.company.ID, ""), apperror.KindInvalidInput},
		{"date outside window", f.user, createReq(f.company.ID, "2025-06-01"), apperror.KindInvalidInput},
	}

	for _, test := range tests {
		_, err := f.service.CreateBooking(ctx, test.principal, test.req)
		assert.Equalf(t, test.expected, apperror.KindOf(err), test.description)
	}

	assert.Zero(t, f.store.bookingCount(f.user.UserID))
}

func TestCreateBookingWindowBoundsAreInclusive(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	tests := []struct {
		date     string
		expected apperror.Kind
	}{
		{"2025-05-09", apperror.KindInvalidInput},
		{"2025-05-10", ""},
		{"2025-05-13", ""},
		{"2025-05-14", apperror.KindInvalidInput},
	}

	for _, test := range tests {
		p := f.newUser("user-" + test.date)
		_, err := f.service.CreateBooking(ctx, p, createReq(f.company.ID, test.date))
		assert.Equalf(t, test.expected, apperror.KindOf(err), test.date)
	}

	_, err := f.service.CreateBooking(ctx, f.user, createReq(f.company.ID, "2025-05-14"))
	require.Error(t, err)
	assert.Equal(t, "Booking date must be between 2025-05-10 and 2025-05-13", apperror.Message(err))
}

func TestCreateBookingSuccess(t *testing.T) {
	f := newBookingFixture(t)

	resp, err := f.service.CreateBooking(context.Background(), f.user, createReq(f.company.ID, "2025-05-12"))
	require.NoError(t, err)

	assert.Equal(t, "2025-05-12", resp.Date)
	assert.Equal(t, f.user.UserID.String(), resp.UserID)
	require.NotNil(t, resp.Company)
	assert.Equal(t, "Acme", resp.Company.Name)
	assert.Equal(t, 1, f.store.bookingCount(f.user.UserID))
}

func TestCreateBookingAcceptsTimestamp(t *testing.T) {
	f := newBookingFixture(t)

	resp, err := f.service.CreateBooking(context.Background(), f.user, createReq(f.company.ID, "2025-05-12T09:30:00Z"))
	require.NoError(t, err)
	assert.Equal(t, "2025-05-12", resp.Date)
}

func TestCreateBookingRejectsDuplicateBelowLimit(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateBooking(ctx, f.user, createReq(f.company.ID, "2025-05-12"))
	require.NoError(t, err)

	_, err = f.service.CreateBooking(ctx, f.user, createReq(f.company.ID, "2025-05-12"))
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, "You already booked this company on this date", apperror.Message(err))
	assert.Equal(t, 1, f.store.bookingCount(f.user.UserID))

	// same company on another day is fine
	_, err = f.service.CreateBooking(ctx, f.user, createReq(f.company.ID, "2025-05-13"))
	assert.NoError(t, err)
}

func TestCreateBookingLimit(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		c := f.store.addCompany("Company " + string(rune('A'+i)))
		_, err := f.service.CreateBooking(ctx, f.user, createReq(c.ID, "2025-05-12"))
		require.NoError(t, err)
	}

	_, err := f.service.CreateBooking(ctx, f.user, createReq(f.company.ID, "2025-05-12"))
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, "You can only make up to 3 bookings", apperror.Message(err))
	assert.Equal(t, 3, f.store.bookingCount(f.user.UserID))
}

func TestCreateBookingDuplicateWinsOverLimit(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateBooking(ctx, f.user, createReq(f.company.ID, "2025-05-11"))
	require.NoError(t, err)
	_, err = f.service.CreateBooking(ctx, f.user, createReq(f.company.ID, "2025-05-12"))
	require.NoError(t, err)
	_, err = f.service.CreateBooking(ctx, f.user, createReq(f.company.ID, "2025-05-13"))
	require.NoError(t, err)

	_, err = f.service.CreateBooking(ctx, f.user, createReq(f.company.ID, "2025-05-12"))
	require.Error(t, err)
	assert.Equal(t, "You already booked this company on this date", apperror.Message(err))
}

func TestCreateBookingConcurrentRequestsKeepLimit(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	const attempts = 12
	companies := make([]*entity.Company, attempts)
	for i := range companies {
		companies[i] = f.store.addCompany(uuid.NewString())
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, limited := 0, 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(c *entity.Company) {
			defer wg.Done()
			_, err := f.service.CreateBooking(ctx, f.user, createReq(c.ID, "2025-05-12"))

			mu.Lock()
			defer mu.Unlock()
			switch apperror.KindOf(err) {
			case "":
				succeeded++
			case apperror.KindConflict:
				limited++
			}
		}(companies[i])
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, attempts-3, limited)
	assert.Equal(t, 3, f.store.bookingCount(f.user.UserID))
}

func TestCreateBookingConcurrentDuplicates(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.CreateBooking(ctx, f.user, createReq(f.company.ID, "2025-05-12"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	}
	assert.Equal(t, 1, ok)
}

func TestDeleteBookingDateRule(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	tests := []struct {
		description string
		date        time.Time
		principal   func() entity.Principal
		expected    apperror.Kind
	}{
		{"owner before the day", day(12), func() entity.Principal { return f.user }, ""},
		{"owner on the day", day(11), func() entity.Principal { return f.user }, apperror.KindInvalidInput},
		{"owner after the day", day(10), func() entity.Principal { return f.user }, apperror.KindInvalidInput},
		{"admin on the day", day(11), func() entity.Principal { return f.admin }, ""},
		{"admin after the day", day(10), func() entity.Principal { return f.admin }, ""},
	}

	for _, test := range tests {
		b := f.store.addBooking(f.user.UserID, f.company.ID, test.date)
		err := f.service.DeleteBooking(ctx, test.principal(), b.ID.String())
		assert.Equalf(t, test.expected, apperror.KindOf(err), test.description)

		_, stillThere := f.store.bookings[b.ID]
		assert.Equalf(t, test.expected != "", stillThere, test.description)
	}
}

func TestDeleteBookingOwnership(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	stranger := f.newUser("stranger")

	future := f.store.addBooking(f.user.UserID, f.company.ID, day(13))
	past := f.store.addBooking(f.user.UserID, f.company.ID, day(10))

	err := f.service.DeleteBooking(ctx, stranger, future.ID.String())
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	// past booking would fail the date rule, but ownership is checked first
	err = f.service.DeleteBooking(ctx, stranger, past.ID.String())
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	err = f.service.DeleteBooking(ctx, f.user, uuid.NewString())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	err = f.service.DeleteBooking(ctx, f.user, "not-a-uuid")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestDeleteBookingUsesConfiguredTimezone(t *testing.T) {
	window, err := entity.NewBookingWindow("2025-05-10", "2025-05-13")
	require.NoError(t, err)

	store := newMemStore(window)
	u := store.addUser("Nok", "nok@example.com", entity.RoleUser)
	c := store.addCompany("Acme")
	b := store.addBooking(u.ID, c.ID, day(12))

	// 18:00 UTC on the 11th is already the 12th in Bangkok
	clock := func() time.Time { return time.Date(2025, 5, 11, 18, 0, 0, 0, time.UTC) }
	bangkok := time.FixedZone("ICT", 7*60*60)
	service := NewBookingService(store.repository(), BookingPolicy{Window: window, Location: bangkok}, clock, zap.NewNop())

	err = service.DeleteBooking(context.Background(), entity.Principal{UserID: u.ID, Role: entity.RoleUser}, b.ID.String())
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))
}

func TestGetBookingByID(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	b := f.store.addBooking(f.user.UserID, f.company.ID, day(12))

	resp, err := f.service.GetBookingByID(ctx, f.user, b.ID.String())
	require.NoError(t, err)
	assert.Nil(t, resp.User)
	require.NotNil(t, resp.Company)

	resp, err = f.service.GetBookingByID(ctx, f.admin, b.ID.String())
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, "nok@example.com", resp.User.Email)

	resp, err = f.service.GetBookingByID(ctx, f.newUser("stranger"), b.ID.String())
	assert.Nil(t, resp)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	_, err = f.service.GetBookingByID(ctx, f.user, uuid.NewString())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestGetBookingsScopedByRole(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	other := f.newUser("other")
	second := f.store.addCompany("Globex")

	first := f.store.addBooking(f.user.UserID, f.company.ID, day(12))
	f.store.addBooking(other.UserID, f.company.ID, day(12))
	last := f.store.addBooking(f.user.UserID, second.ID, day(13))

	own, err := f.service.GetBookings(ctx, f.user, "", nil)
	require.NoError(t, err)
	require.Len(t, own.Data, 2)
	assert.Equal(t, first.ID.String(), own.Data[0].ID)
	assert.Equal(t, last.ID.String(), own.Data[1].ID)
	assert.Nil(t, own.Data[0].User)

	all, err := f.service.GetBookings(ctx, f.admin, "", nil)
	require.NoError(t, err)
	assert.Len(t, all.Data, 3)
	assert.Equal(t, int64(3), all.Pagination.Total)
	assert.NotNil(t, all.Data[0].User)

	byCompany, err := f.service.GetBookings(ctx, f.admin, f.company.ID.String(), nil)
	require.NoError(t, err)
	assert.Len(t, byCompany.Data, 2)

	_, err = f.service.GetBookings(ctx, f.user, uuid.NewString(), nil)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	paged, err := f.service.GetBookings(ctx, f.admin, "", &request.PaginatedRequest{Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, paged.Data, 1)
	assert.Equal(t, 2, paged.Pagination.TotalPages)
}

func TestUpdateBooking(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	b := f.store.addBooking(f.user.UserID, f.company.ID, day(12))
	f.store.addBooking(f.user.UserID, f.company.ID, day(13))

	str := func(s string) *string { return &s }
	otherCompany := uuid.NewString()

	tests := []struct {
		description string
		principal   entity.Principal
		req         *request.UpdateBookingRequest
		expected    apperror.Kind
	}{
		{"stranger", f.newUser("stranger"), &request.UpdateBookingRequest{Date: str("2025-05-11")}, apperror.KindForbidden},
		{"company change", f.user, &request.UpdateBookingRequest{CompanyID: &otherCompany, Date: str("2025-05-11")}, apperror.KindInvalidInput},
		{"empty patch", f.user, &request.UpdateBookingRequest{}, apperror.KindInvalidInput},
		{"bad date", f.user, &request.UpdateBookingRequest{Date: str("soon")}, apperror.KindInvalidInput},
		{"outside window", f.user, &request.UpdateBookingRequest{Date: str("2025-05-20")}, apperror.KindInvalidInput},
		{"admin still bound by window", f.admin, &request.UpdateBookingRequest{Date: str("2025-05-20")}, apperror.KindInvalidInput},
		{"collides with own booking", f.user, &request.UpdateBookingRequest{Date: str("2025-05-13")}, apperror.KindConflict},
	}

	for _, test := range tests {
		_, err := f.service.UpdateBooking(ctx, test.principal, b.ID.String(), test.req)
		assert.Equalf(t, test.expected, apperror.KindOf(err), test.description)
	}

	sameCompany := f.company.ID.String()
	resp, err := f.service.UpdateBooking(ctx, f.user, b.ID.String(), &request.UpdateBookingRequest{CompanyID: &sameCompany, Date: str("2025-05-10")})
	require.NoError(t, err)
	assert.Equal(t, "2025-05-10", resp.Date)

	resp, err = f.service.UpdateBooking(ctx, f.admin, b.ID.String(), &request.UpdateBookingRequest{Date: str("2025-05-11")})
	require.NoError(t, err)
	assert.Equal(t, "2025-05-11", resp.Date)

	_, err = f.service.UpdateBooking(ctx, f.user, uuid.NewString(), &request.UpdateBookingRequest{Date: str("2025-05-11")})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestBookingStoreUnavailable(t *testing.T) {
	f := newBookingFixture(t)
	f.store.failWith = apperror.Unavailable(context.DeadlineExceeded, "find booking")

	_, err := f.service.CreateBooking(context.Background(), f.user, createReq(f.company.ID, "2025-05-12"))
	assert.Equal(t, apperror.KindUnavailable, apperror.KindOf(err))

	_, err = f.service.GetBookings(context.Background(), f.user, "", nil)
	assert.Equal(t, apperror.KindUnavailable, apperror.KindOf(err))

	f.store.failWith = errors.New("relation bookings does not exist")
	_, err = f.service.GetBookings(context.Background(), f.user, "", nil)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.Equal(t, "Internal server error", apperror.Message(err))
}
