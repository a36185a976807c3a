package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"redflix-api/internal/core/apperr"
	"redflix-api/internal/core/auth"
	"redflix-api/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type UserService struct {
	users domain.UserRepository
	log   *zap.Logger
}

func NewUserService(users domain.UserRepository, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{users: users, log: log.Named("users")}
}

type UserPage struct {
	Total int64         `json:"total"`
	Items []domain.User `json:"items"`
}

// UpdateMeInput nil 字段保持不变
type UpdateMeInput struct {
	FirstName *string
	LastName  *string
	Username  *string
	Email     *string
}

type UpdateUserInput struct {
	Role      *string
	IsEnabled *bool
}

func (s *UserService) List(ctx context.Context, q domain.ListQuery) (*UserPage, error) {
	if q.Limit <= 0 || q.Limit > maxPageSize {
		q.Limit = defaultPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	items, total, err := s.users.List(ctx, q)
	if err != nil {
		return nil, apperr.Repository(err)
	}
	return &UserPage{Total: total, Items: items}, nil
}

func (s *UserService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, apperr.NotFound(fmt.Sprintf("User with ID %s not found.", id))
	}
	if err != nil {
		return nil, apperr.Repository(err)
	}
	return u, nil
}

func (s *UserService) Me(ctx context.Context, p auth.Principal) (*domain.User, error) {
	return s.FindByID(ctx, p.ID)
}

func (s *UserService) UpdateMe(ctx context.Context, p auth.Principal, in UpdateMeInput) (*domain.User, error) {
	u, err := s.FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil && *in.FirstName != "" {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil && *in.LastName != "" {
		u.LastName = *in.LastName
	}
	if in.Username != nil && *in.Username != "" && *in.Username != u.Username {
		ok, err := s.users.IsUsernameUnique(ctx, *in.Username)
		if err != nil {
			return nil, apperr.Repository(err)
		}
		if !ok {
			return nil, apperr.Conflict(fmt.Sprintf("Username %s is already taken.", *in.Username))
		}
		u.Username = *in.Username
	}
	if in.Email != nil && *in.Email != "" && *in.Email != u.Email {
		ok, err := s.users.IsEmailUnique(ctx, *in.Email)
		if err != nil {
			return nil, apperr.Repository(err)
		}
		if !ok {
			return nil, apperr.Conflict(fmt.Sprintf("Email %s is already registered.", *in.Email))
		}
		u.Email = *in.Email
	}
	saved, err := s.users.Update(ctx, u)
	if err != nil {
		return nil, storeErr(err)
	}
	return saved, nil
}

const (
	MsgDisableViaDelete = "Users can only be disabled by deleting them."
	MsgDeletedRole      = "DELETED_USER role can only be assigned by deleting the user."
	MsgRestoreNeedsRole = "Deleted users can only be restored with isEnabled=true and a new role."
	MsgRestoreAdminOnly = "Deleted users can only be restored by ADMIN users."
)

// UpdateByID MANAGER 不能授予 ADMIN，也不能修改 ADMIN 用户。
// 禁用只能走 SoftDelete；已删除用户只能由 ADMIN 带着新角色一起恢复。
func (s *UserService) UpdateByID(ctx context.Context, actor auth.Principal, id string, in UpdateUserInput) (*domain.User, error) {
	var role domain.Role
	if in.Role != nil {
		r, err := domain.ParseRole(*in.Role)
		if err != nil {
			return nil, err
		}
		if r == domain.RoleDeletedUser {
			return nil, apperr.BadRequest(MsgDeletedRole)
		}
		role = r
	}
	if in.IsEnabled != nil && !*in.IsEnabled {
		return nil, apperr.BadRequest(MsgDisableViaDelete)
	}
	u, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleManager && (u.Role == domain.RoleAdmin || role == domain.RoleAdmin) {
		return nil, apperr.Forbidden("ADMIN role cannot be modified by MANAGER users.")
	}
	if u.Role == domain.RoleDeletedUser {
		if actor.Role != domain.RoleAdmin {
			return nil, apperr.Forbidden(MsgRestoreAdminOnly)
		}
		if role == "" || in.IsEnabled == nil {
			return nil, apperr.BadRequest(MsgRestoreNeedsRole)
		}
	}
	if role != "" {
		u.Role = role
	}
	if in.IsEnabled != nil {
		u.IsEnabled = true
	}
	saved, err := s.users.Update(ctx, u)
	if err != nil {
		return nil, storeErr(err)
	}
	s.log.Info("user updated",
		zap.String("actor_id", actor.ID),
		zap.String("user_id", saved.ID),
		zap.String("role", string(saved.Role)),
		zap.Bool("enabled", saved.IsEnabled),
	)
	return saved, nil
}

func (s *UserService) SoftDelete(ctx context.Context, actor auth.Principal, id string) error {
	if err := s.users.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return apperr.NotFound(fmt.Sprintf("User with ID %s not found.", id))
		}
		return apperr.Repository(err)
	}
	s.log.Info("user disabled", zap.String("actor_id", actor.ID), zap.String("user_id", id))
	return nil
}
