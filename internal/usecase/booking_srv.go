package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"interview-booking/internal/data/entity"
	"interview-booking/internal/data/repository"
	"interview-booking/internal/dto/request"
	"interview-booking/internal/dto/response"
	"interview-booking/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	CreateBooking(ctx context.Context, principal entity.Principal, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	// GetBookings lists bookings visible to principal. companyID narrows the
	// list to one company when non-empty; a nil page returns every row.
	GetBookings(ctx context.Context, principal entity.Principal, companyID string, page *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetBookingByID(ctx context.Context, principal entity.Principal, bookingID string) (*response.BookingResponse, error)
	UpdateBooking(ctx context.Context, principal entity.Principal, bookingID string, req *request.UpdateBookingRequest) (*response.BookingResponse, error)
	DeleteBooking(ctx context.Context, principal entity.Principal, bookingID string) error
}

type BookingPolicy struct {
	Window     entity.BookingWindow
	MaxPerUser int
	Location   *time.Location
}

type bookingService struct {
	repo   *repository.Repository
	policy BookingPolicy
	now    func() time.Time
	log    *zap.Logger
}

// NewBookingService builds the admission engine. now defaults to time.Now.
func NewBookingService(repo *repository.Repository, policy BookingPolicy, now func() time.Time, log *zap.Logger) BookingService {
	if now == nil {
		now = time.Now
	}
	if policy.Location == nil {
		policy.Location = time.Local
	}
	if policy.MaxPerUser <= 0 {
		policy.MaxPerUser = 3
	}

	return &bookingService{
		repo:   repo,
		policy: policy,
		now:    now,
		log:    log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, principal entity.Principal, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	// 1. Hanya role user yang boleh booking
	if principal.Role != entity.RoleUser {
		s.log.Warn("Create booking rejected for role",
			zap.String("user_id", principal.UserID.String()),
			zap.String("role", string(principal.Role)))
		return nil, apperror.Forbidden("User role %s is not authorized to create a booking", principal.Role)
	}

	// 2. Company harus ada
	company, err := s.findCompany(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}

	// 3. Date harus valid
	date, err := entity.ParseBookingDate(req.Date, s.policy.Location)
	if err != nil {
		return nil, apperror.InvalidInput("Invalid booking date: %s", req.Date)
	}

	// 4. Date harus di dalam window
	if !s.policy.Window.Contains(date) {
		return nil, s.outsideWindow()
	}

	booking := &entity.Booking{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: s.now(),
		},
		UserID:    principal.UserID,
		CompanyID: company.ID,
		Date:      date,
	}

	// 5-6. Duplicate dan limit dicek atomik bersama insert
	if err := s.repo.Booking.CreateWithinLimit(ctx, booking, s.policy.MaxPerUser); err != nil {
		return nil, s.bookingError(err, "create booking")
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("user_id", booking.UserID.String()),
		zap.String("company_id", booking.CompanyID.String()),
		zap.String("date", booking.Date.Format(entity.DateLayout)))

	resp := response.BookingDetailToResponse(&entity.BookingDetail{Booking: *booking, Company: company}, false)
	return &resp, nil
}

func (s *bookingService) GetBookings(ctx context.Context, principal entity.Principal, companyID string, page *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	filter := repository.BookingFilter{}

	if companyID != "" {
		company, err := s.findCompany(ctx, companyID)
		if err != nil {
			return nil, err
		}
		filter.CompanyID = &company.ID
	}

	if !principal.IsAdmin() {
		filter.UserID = &principal.UserID
	}

	pageNum, perPage := 1, 0
	if page != nil {
		pageNum = page.CurrentPage()
		perPage = page.Limit()
		filter.Limit = perPage
		filter.Offset = page.Offset()
	}

	details, err := s.repo.Booking.FindAll(ctx, filter)
	if err != nil {
		return nil, s.bookingError(err, "list bookings")
	}

	total := int64(len(details))
	if page != nil {
		total, err = s.repo.Booking.Count(ctx, filter)
		if err != nil {
			return nil, s.bookingError(err, "count bookings")
		}
	} else {
		perPage = len(details)
	}

	bookings := make([]response.BookingResponse, 0, len(details))
	for _, d := range details {
		bookings = append(bookings, response.BookingDetailToResponse(d, principal.IsAdmin()))
	}

	return response.NewPaginatedResponse(bookings, pageNum, perPage, total), nil
}

func (s *bookingService) GetBookingByID(ctx context.Context, principal entity.Principal, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.NotFound("No booking with the id of %s", bookingID)
	}

	detail, err := s.repo.Booking.FindDetailByID(ctx, id)
	if err != nil {
		return nil, s.bookingError(err, "get booking")
	}
	if detail == nil {
		return nil, apperror.NotFound("No booking with the id of %s", bookingID)
	}

	if !principal.CanAccess(&detail.Booking) {
		s.log.Warn("Booking access denied",
			zap.String("booking_id", bookingID),
			zap.String("user_id", principal.UserID.String()))
		return nil, apperror.Forbidden("User %s is not authorized to view this booking", principal.UserID)
	}

	resp := response.BookingDetailToResponse(detail, principal.IsAdmin())
	return &resp, nil
}

func (s *bookingService) UpdateBooking(ctx context.Context, principal entity.Principal, bookingID string, req *request.UpdateBookingRequest) (*response.BookingResponse, error) {
	booking, err := s.loadOwned(ctx, principal, bookingID, "update")
	if err != nil {
		return nil, err
	}

	if req.CompanyID != nil && !strings.EqualFold(strings.TrimSpace(*req.CompanyID), booking.CompanyID.String()) {
		return nil, apperror.InvalidInput("companyId cannot be changed, cancel the booking and create a new one")
	}
	if req.Date == nil {
		return nil, apperror.InvalidInput("Nothing to update, only the booking date can be changed")
	}

	date, err := entity.ParseBookingDate(*req.Date, s.policy.Location)
	if err != nil {
		return nil, apperror.InvalidInput("Invalid booking date: %s", *req.Date)
	}
	if !s.policy.Window.Contains(date) {
		return nil, s.outsideWindow()
	}

	booking.Date = date
	if err := s.repo.Booking.Update(ctx, booking); err != nil {
		return nil, s.bookingError(err, "update booking")
	}

	s.log.Info("Booking updated",
		zap.String("booking_id", booking.ID.String()),
		zap.String("by", principal.UserID.String()),
		zap.String("date", date.Format(entity.DateLayout)))

	return s.GetBookingByID(ctx, principal, bookingID)
}

func (s *bookingService) DeleteBooking(ctx context.Context, principal entity.Principal, bookingID string) error {
	// Ownership dulu: non-owner dapat forbidden, bukan pesan aturan tanggal
	// yang membocorkan jadwal booking orang lain.
	booking, err := s.loadOwned(ctx, principal, bookingID, "delete")
	if err != nil {
		return err
	}

	// Non-admin hanya boleh cancel sebelum hari interview
	if !principal.IsAdmin() {
		today := entity.DateOnly(s.now(), s.policy.Location)
		if !booking.Date.After(today) {
			return apperror.InvalidInput("Bookings cannot be canceled on or after the scheduled interview date")
		}
	}

	if err := s.repo.Booking.Delete(ctx, booking.ID); err != nil {
		return s.bookingError(err, "delete booking")
	}

	s.log.Info("Booking deleted",
		zap.String("booking_id", booking.ID.String()),
		zap.String("by", principal.UserID.String()))

	return nil
}

// ==================== HELPER METHODS ====================

// loadOwned finds the booking and checks principal may act on it.
func (s *bookingService) loadOwned(ctx context.Context, principal entity.Principal, bookingID, action string) (*entity.Booking, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.NotFound("No booking with the id of %s", bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, s.bookingError(err, action+" booking")
	}
	if booking == nil {
		return nil, apperror.NotFound("No booking with the id of %s", bookingID)
	}

	if !principal.CanAccess(booking) {
		s.log.Warn("Booking access denied",
			zap.String("booking_id", bookingID),
			zap.String("user_id", principal.UserID.String()),
			zap.String("action", action))
		return nil, apperror.Forbidden("User %s is not authorized to %s this booking", principal.UserID, action)
	}

	return booking, nil
}

func (s *bookingService) findCompany(ctx context.Context, companyID string) (*entity.Company, error) {
	id, err := uuid.Parse(strings.TrimSpace(companyID))
	if err != nil {
		return nil, apperror.NotFound("No company with the id of %s", companyID)
	}

	company, err := s.repo.Company.FindByID(ctx, id)
	if err != nil {
		return nil, s.bookingError(err, "find company")
	}
	if company == nil {
		return nil, apperror.NotFound("No company with the id of %s", companyID)
	}

	return company, nil
}

func (s *bookingService) outsideWindow() error {
	return apperror.InvalidInput("Booking date must be between %s", s.policy.Window)
}

// bookingError translates repository outcomes into service errors.
func (s *bookingService) bookingError(err error, operation string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateBooking):
		return apperror.Conflict("You already booked this company on this date")
	case errors.Is(err, repository.ErrBookingLimitReached):
		return apperror.Conflict("You can only make up to %d bookings", s.policy.MaxPerUser)
	case errors.Is(err, repository.ErrOutsideWindow):
		return s.outsideWindow()
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound("Booking not found")
	}

	return storeFailure(s.log, err, operation)
}
