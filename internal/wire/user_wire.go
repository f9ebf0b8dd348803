package wire

import (
	"interview-booking/internal/adaptor"
	"interview-booking/internal/data/repository"
	"interview-booking/pkg/middleware"
	"interview-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireUser configures user management routes, admin only
func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== ADMIN ROUTES ====================
	r.With(
		middleware.AuthSession(config.JWT.Secret, repo.Session, repo.User, log),
		middleware.Admin(log),
	).Route("/api/v1/users", func(r chi.Router) {
		r.Get("/", userHandler.GetAllUsers)       // GET /api/v1/users?page=1&per_page=10
		r.Delete("/{id}", userHandler.DeleteUser) // also removes the user's bookings
	})
}
