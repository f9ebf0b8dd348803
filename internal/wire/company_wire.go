package wire

import (
	"interview-booking/internal/adaptor"
	"interview-booking/internal/data/repository"
	"interview-booking/pkg/middleware"
	"interview-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCompany(
	r chi.Router,
	companyHandler *adaptor.CompanyHandler,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	auth := middleware.AuthSession(config.JWT.Secret, repo.Session, repo.User, log)

	r.Route("/api/v1/companies", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.Get("/", companyHandler.GetCompanies)
		r.Get("/{companyId}", companyHandler.GetCompanyByID)

		// ==================== PROTECTED ROUTES ====================
		// bookings for one company; admin sees all, users see their own
		r.With(auth).Get("/{companyId}/bookings", bookingHandler.GetCompanyBookings)

		// ==================== ADMIN ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Use(middleware.Admin(log))

			r.Post("/", companyHandler.CreateCompany)
			r.Put("/{companyId}", companyHandler.UpdateCompany)
			r.Delete("/{companyId}", companyHandler.DeleteCompany)
		})
	})
}
