package adaptor

import (
	"net/http"

	"interview-booking/internal/dto/request"
	"interview-booking/internal/usecase"
	"interview-booking/pkg/apperror"
	"interview-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	User    *UserHandler
	Company *CompanyHandler
	Booking *BookingHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		User:    NewUserHandler(service.User, log),
		Company: NewCompanyHandler(service.Company, log),
		Booking: NewBookingHandler(service.Booking, log),
	}
}

// handleServiceError maps service errors to the response envelope.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	msg := apperror.Message(err)

	switch apperror.KindOf(err) {
	case apperror.KindInvalidInput:
		log.Warn(operation+" failed - invalid input", zap.Error(err))
		utils.ResponseBadRequest(w, msg, nil)

	case apperror.KindUnauthorized:
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, msg)

	case apperror.KindForbidden:
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, msg)

	case apperror.KindNotFound:
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, msg)

	case apperror.KindConflict:
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, msg)

	case apperror.KindUnavailable:
		log.Warn(operation+" failed - store unavailable", zap.Error(err))
		utils.ResponseUnavailable(w, msg)

	default:
		log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// parsePage returns nil when the client asked for neither page nor per_page.
func parsePage(r *http.Request) *request.PaginatedRequest {
	query := r.URL.Query()
	if query.Get("page") == "" && query.Get("per_page") == "" {
		return nil
	}

	return &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), request.DefaultPerPage),
	}
}

// pageOrDefault is parsePage for endpoints that are always paginated.
func pageOrDefault(r *http.Request) *request.PaginatedRequest {
	if page := parsePage(r); page != nil {
		return page
	}
	return &request.PaginatedRequest{Page: 1, PerPage: request.DefaultPerPage}
}
