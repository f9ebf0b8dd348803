package utils

import (
	"context"

	"interview-booking/internal/data/entity"

	"github.com/google/uuid"
)

type contextKey string

const (
	PrincipalKey contextKey = "principal"
	TokenKey     contextKey = "token"
)

// SetPrincipalContext attaches the authenticated principal to ctx.
func SetPrincipalContext(ctx context.Context, userID uuid.UUID, role entity.UserRole) context.Context {
	return context.WithValue(ctx, PrincipalKey, entity.Principal{UserID: userID, Role: role})
}

func GetPrincipalFromContext(ctx context.Context) (entity.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(entity.Principal)
	if !ok || p.UserID == uuid.Nil {
		return entity.Principal{}, false
	}
	return p, true
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	p, ok := GetPrincipalFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return p.UserID, true
}

// GetTokenFromContext mendapatkan token dari context
func GetTokenFromContext(ctx context.Context) (string, bool) {
	tokenVal := ctx.Value(TokenKey)
	if tokenVal == nil {
		return "", false
	}

	token, ok := tokenVal.(string)
	return token, ok
}

// SetTokenContext menambahkan token ke context
func SetTokenContext(ctx context.Context, token string) context.Context {
	ctx = context.WithValue(ctx, TokenKey, token)
	return ctx
}
