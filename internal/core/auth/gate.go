package auth

import (
	"context"
	"errors"
	"fmt"

	"redflix-api/internal/core/apperr"
	"redflix-api/internal/core/metrics"
	"redflix-api/internal/domain"
)

var ErrEmptyRoleSet = errors.New("role set must not be empty")

// RoleSet 路由允许的角色集合；没有继承关系，ADMIN 不自动包含 MANAGER
type RoleSet struct {
	roles []domain.Role
}

func NewRoleSet(roles ...domain.Role) (RoleSet, error) {
	if len(roles) == 0 {
		return RoleSet{}, ErrEmptyRoleSet
	}
	out := make([]domain.Role, 0, len(roles))
	seen := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		if !r.IsValid() {
			return RoleSet{}, fmt.Errorf("unknown role %q", r)
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return RoleSet{roles: out}, nil
}

// MustRoleSet 只用于路由装配期
func MustRoleSet(roles ...domain.Role) RoleSet {
	s, err := NewRoleSet(roles...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s RoleSet) Contains(r domain.Role) bool {
	for _, v := range s.roles {
		if v == r {
			return true
		}
	}
	return false
}

func (s RoleSet) Roles() []domain.Role { return append([]domain.Role(nil), s.roles...) }

func (s RoleSet) Empty() bool { return len(s.roles) == 0 }

var (
	AdminOnly     = MustRoleSet(domain.RoleAdmin)
	AdminsManager = MustRoleSet(domain.RoleAdmin, domain.RoleManager)
	StaffRoles    = MustRoleSet(domain.RoleAdmin, domain.RoleManager, domain.RoleEmployee)
	MemberRoles   = MustRoleSet(domain.RoleAdmin, domain.RoleManager, domain.RoleEmployee, domain.RoleCustomer)
)

// Gate 单个路由的角色校验
type Gate struct {
	Allowed  RoleSet
	Resource string
}

func (g Gate) Check(ctx context.Context) error {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return apperr.Internal("role check attempted before session resolution")
	}
	if !g.Allowed.Contains(p.Role) {
		metrics.RoleDeniedTotal.WithLabelValues(g.Resource).Inc()
		return apperr.Forbidden(fmt.Sprintf("Requested resource %s is not available for %s users.", g.Resource, p.Role))
	}
	return nil
}
