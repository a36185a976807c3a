package auth

import (
	"context"

	"redflix-api/internal/domain"
)

// Principal 本次请求已认证的用户快照
type Principal struct {
	ID        string
	Username  string
	Email     string
	Role      domain.Role
	IsEnabled bool
}

func PrincipalOf(u *domain.User) Principal {
	return Principal{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsEnabled: u.IsEnabled,
	}
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
