package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"interview-booking/internal/data/entity"
	"interview-booking/internal/data/repository"
	"interview-booking/internal/dto/request"
	"interview-booking/internal/dto/response"
	"interview-booking/pkg/apperror"
	"interview-booking/pkg/notify"
	"interview-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientInfo describes the caller that opens a session.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest, client ClientInfo) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest, client ClientInfo) (*response.AuthResponse, error)
	Logout(ctx context.Context, sessionToken string) error
	SendOTP(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest) error
}

type authService struct {
	repo     *repository.Repository // grouping userRepo, sessionRepo, & otpRepo
	notifier notify.Notifier
	config   *utils.Config
	log      *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	notifier notify.Notifier,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:     repo,
		notifier: notifier,
		config:   config,
		log:      log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest, client ClientInfo) (*response.AuthResponse, error) {
	// 1. Validasi input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", errs))
		return nil, apperror.InvalidInput("Validation failed: %s", utils.FormatValidationErrors(errs))
	}

	email := normalizeEmail(req.Email)

	// 2. Cek email sudah terdaftar
	existingUser, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, storeFailure(s.log, err, "check email")
	}
	if existingUser != nil {
		return nil, apperror.Conflict("Email already registered")
	}

	// 3. Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := entity.RoleUser
	if slices.Contains(s.config.App.AdminEmails, email) {
		role = entity.RoleAdmin
	}

	// 4. Create user entity
	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:          strings.TrimSpace(req.Name),
		Telephone:     req.Telephone,
		Email:         email,
		PasswordHash:  hashedPassword,
		Role:          role,
		EmailVerified: false,
	}

	// 5. Save user
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("Email already registered")
		}
		return nil, storeFailure(s.log, err, "create account")
	}

	// 6. Send OTP email (async)
	go s.sendVerificationOTP(user.Email)

	// 7. Auto login setelah register
	resp, err := s.issueToken(ctx, user, client)
	if err != nil {
		return nil, err
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)))

	return resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest, client ClientInfo) (*response.AuthResponse, error) {
	// 1. Validasi
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, apperror.InvalidInput("Validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 2. Find user by email
	user, err := s.repo.User.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, storeFailure(s.log, err, "find user")
	}
	if user == nil {
		s.log.Warn("User not found for login", zap.String("email", req.Email))
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	// 3. Check password
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	// 4. Create session
	resp, err := s.issueToken(ctx, user, client)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in", zap.String("user_id", user.ID.String()))
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, sessionToken string) error {
	// 1. Parse token
	token, err := uuid.Parse(sessionToken)
	if err != nil {
		return apperror.Unauthorized("Invalid token format")
	}

	// 2. Revoke session
	if err := s.repo.Session.Revoke(ctx, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Unauthorized("Session already ended")
		}
		return storeFailure(s.log, err, "revoke session")
	}

	s.log.Info("User logged out", zap.String("session", token.String()))
	return nil
}

func (s *authService) SendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	// 1. Find user
	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return storeFailure(s.log, err, "find user for OTP")
	}
	if user == nil {
		return apperror.NotFound("No user registered with %s", email)
	}

	// 2. Check if already verified
	if user.EmailVerified {
		return apperror.Conflict("Email already verified")
	}

	// 3. Generate OTP
	otpCode := utils.GenerateOTP(s.config.OTP.Length)
	now := time.Now()
	expiresAt := now.Add(time.Duration(s.config.OTP.ExpiryMinutes) * time.Minute)

	otp := &entity.OTP{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		Email:     email,
		OTPCode:   otpCode,
		OTPType:   entity.OTPTypeEmailVerification,
		ExpiresAt: expiresAt,
	}

	// 4. Save OTP, kode lama otomatis hangus
	if err := s.repo.OTP.Issue(ctx, otp); err != nil {
		return storeFailure(s.log, err, "save OTP")
	}

	// 5. Kirim lewat notifier
	msg := notify.Message{
		To:      email,
		Subject: "Verify your email",
		Body: fmt.Sprintf("Hey %s, your verification code is %s. It expires in %d minutes.",
			user.Name, otpCode, s.config.OTP.ExpiryMinutes),
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.log.Error("Failed to deliver OTP", zap.Error(err), zap.String("email", email))
		return apperror.Unavailable(err, "deliver verification code")
	}

	s.log.Info("OTP sent",
		zap.String("email", email),
		zap.Time("expires_at", expiresAt))

	return nil
}

func (s *authService) VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest) error {
	// 1. Validasi
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Verify email validation failed", zap.Any("errors", errs))
		return apperror.InvalidInput("Validation failed: %s", utils.FormatValidationErrors(errs))
	}

	email := normalizeEmail(req.Email)

	// 2. Consume OTP
	otp, err := s.repo.OTP.Consume(ctx, email, req.OTP, entity.OTPTypeEmailVerification)
	if err != nil {
		return storeFailure(s.log, err, "consume OTP")
	}
	if otp == nil {
		return apperror.InvalidInput("Invalid or expired OTP")
	}

	// 3. Find user
	user, err := s.repo.User.FindByID(ctx, otp.UserID)
	if err != nil {
		return storeFailure(s.log, err, "find user for verification")
	}
	if user == nil {
		return apperror.NotFound("No user registered with %s", email)
	}

	// 4. Update user verification status
	user.EmailVerified = true
	user.UpdatedAt = time.Now()

	if err := s.repo.User.Update(ctx, user); err != nil {
		return storeFailure(s.log, err, "verify email")
	}

	s.log.Info("Email verified",
		zap.String("email", email),
		zap.String("user_id", user.ID.String()))

	return nil
}

// ==================== HELPER METHODS ====================

// issueToken opens a session and signs an access token bound to it.
func (s *authService) issueToken(ctx context.Context, user *entity.User, client ClientInfo) (*response.AuthResponse, error) {
	now := time.Now()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		Token:     uuid.New(),
		UserAgent: optional(client.UserAgent),
		IPAddress: optional(client.IPAddress),
		ExpiresAt: now.Add(time.Duration(s.config.JWT.ExpiryHours) * time.Hour),
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, storeFailure(s.log, err, "create session")
	}

	token, err := utils.GenerateAccessToken(s.config.JWT.Secret, user.ID, user.Role, session.Token, session.ExpiresAt)
	if err != nil {
		s.log.Error("Failed to sign token", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	resp := response.AuthToResponse(user, token, session.ExpiresAt)
	return &resp, nil
}

func (s *authService) sendVerificationOTP(email string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.SendOTP(ctx, email); err != nil {
		s.log.Error("Failed to send verification OTP", zap.Error(err), zap.String("email", email))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
