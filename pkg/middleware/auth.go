package middleware

import (
	"net/http"
	"strings"

	"interview-booking/internal/data/repository"
	"interview-booking/pkg/apperror"
	"interview-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthSession middleware untuk validasi access token dan session-nya
func AuthSession(
	secret string,
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	logger *zap.Logger,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			claims, err := utils.ParseAccessToken(secret, strings.TrimSpace(token))
			if err != nil {
				logger.Debug("Rejected access token", zap.Error(err))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			// Token harus punya session yang masih aktif
			sessionToken, err := uuid.Parse(claims.ID)
			if err != nil {
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}
			session, err := sessionRepo.FindValidSession(r.Context(), sessionToken)
			if err != nil {
				storeFailure(w, logger, err, "validate session")
				return
			}
			if session == nil || session.UserID.String() != claims.Subject {
				logger.Warn("Invalid or expired session", zap.String("user_id", claims.Subject))
				utils.ResponseUnauthorized(w, "Invalid or expired session")
				return
			}

			// Role diambil ulang dari database
			user, err := userRepo.FindByID(r.Context(), session.UserID)
			if err != nil {
				storeFailure(w, logger, err, "load user")
				return
			}
			if user == nil {
				utils.ResponseUnauthorized(w, "User no longer exists")
				return
			}

			ctx := utils.SetPrincipalContext(r.Context(), user.ID, user.Role)
			ctx = utils.SetTokenContext(ctx, sessionToken.String())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Admin - middleware cek role admin. Must run after AuthSession.
func Admin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := utils.GetPrincipalFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if !principal.IsAdmin() {
				logger.Warn("Admin check: non-admin access attempt",
					zap.String("user_id", principal.UserID.String()),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "User role "+string(principal.Role)+" is not authorized to access this route")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func storeFailure(w http.ResponseWriter, logger *zap.Logger, err error, operation string) {
	if apperror.KindOf(err) == apperror.KindUnavailable {
		logger.Warn("Auth store unavailable", zap.String("operation", operation), zap.Error(err))
		utils.ResponseUnavailable(w, apperror.Message(err))
		return
	}

	logger.Error("Failed to "+operation, zap.Error(err))
	utils.ResponseInternalError(w, "Internal server error")
}
