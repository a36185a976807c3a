package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"redflix-api/internal/core/apperr"
)

type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleManager     Role = "MANAGER"
	RoleEmployee    Role = "EMPLOYEE"
	RoleCustomer    Role = "CUSTOMER"
	RoleGuest       Role = "GUEST"
	RoleDeletedUser Role = "DELETED_USER"
)

// Roles 封闭枚举，顺序即展示顺序
var Roles = []Role{RoleAdmin, RoleManager, RoleEmployee, RoleCustomer, RoleGuest, RoleDeletedUser}

func (r Role) IsValid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if !r.IsValid() {
		names := make([]string, len(Roles))
		for i, v := range Roles {
			names[i] = string(v)
		}
		return "", apperr.BadRequest(fmt.Sprintf("%s is an invalid role. Remember that the only available roles are %s.", s, strings.Join(names, ",")))
	}
	return r, nil
}

type User struct {
	ID                 string    `json:"id"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Role               Role      `json:"role"`
	IsEnabled          bool      `json:"isEnabled"`
	ResetPasswordToken *string   `json:"-"`
	VerifyToken        *string   `json:"-"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

type ListQuery struct {
	Offset int
	Limit  int
	Q      string // 按 username/email 模糊搜
}

// UserRepository 用户存储；查不到返回 ErrUserNotFound
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByResetToken(ctx context.Context, token string) (*User, error)
	FindByVerifyToken(ctx context.Context, token string) (*User, error)
	IsUsernameUnique(ctx context.Context, username string) (bool, error)
	IsEmailUnique(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) (*User, error)
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, q ListQuery) ([]User, int64, error)
}
