package auth

import (
	"context"
	"errors"

	"redflix-api/internal/core/apperr"
	"redflix-api/internal/core/metrics"
	"redflix-api/internal/domain"
)

type TokenValidator interface {
	Validate(token string) (string, error)
}

type UserLoader interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// SessionResolver 把 bearer token 解析成 Principal
type SessionResolver struct {
	tokens TokenValidator
	users  UserLoader
}

func NewSessionResolver(tokens TokenValidator, users UserLoader) *SessionResolver {
	return &SessionResolver{tokens: tokens, users: users}
}

// Resolve 成功时返回携带 Principal 的新 ctx；失败时 ctx 原样不动
func (r *SessionResolver) Resolve(ctx context.Context, token string) (context.Context, error) {
	if token == "" {
		metrics.SessionRejectedTotal.WithLabelValues("missing").Inc()
		return ctx, apperr.Unauthorized("missing token")
	}
	id, err := r.tokens.Validate(token)
	if err != nil {
		metrics.SessionRejectedTotal.WithLabelValues("invalid").Inc()
		return ctx, apperr.Unauthorized("invalid token")
	}
	u, err := r.users.FindByID(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		metrics.SessionRejectedTotal.WithLabelValues("unknown_user").Inc()
		return ctx, apperr.Unauthorized("invalid token")
	}
	if err != nil {
		return ctx, apperr.Repository(err)
	}
	if !u.IsEnabled {
		metrics.SessionRejectedTotal.WithLabelValues("disabled").Inc()
		return ctx, apperr.Unauthorized("invalid token")
	}
	return WithPrincipal(ctx, PrincipalOf(u)), nil
}
