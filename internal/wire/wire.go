package wire

import (
	"net/http"

	"interview-booking/internal/adaptor"
	"interview-booking/internal/data/entity"
	"interview-booking/internal/data/repository"
	"interview-booking/internal/usecase"
	"interview-booking/pkg/middleware"
	"interview-booking/pkg/notify"
	"interview-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App menyimpan semua dependencies
type App struct {
	Router    *chi.Mux
	Scheduler *Scheduler
}

// Wiring menginisialisasi semua dependencies
func Wiring(
	repo *repository.Repository,
	window entity.BookingWindow,
	notifier notify.Notifier,
	config *utils.Config,
	logger *zap.Logger,
) (*App, error) {
	service := usecase.NewService(repo, window, notifier, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, config, logger)

	scheduler, err := NewScheduler(service.Reminder, repo.Session, config, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Router:    router,
		Scheduler: scheduler,
	}, nil
}

// setupRouter konfigurasi Chi router
func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Apply routes
	wireAuth(r, handler.Auth, handler.User, repo, config, logger)
	wireUser(r, handler.User, repo, config, logger)
	wireCompany(r, handler.Company, handler.Booking, repo, config, logger)
	wireBooking(r, handler.Booking, repo, config, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
