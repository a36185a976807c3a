package user

import (
	"time"

	"redflix-api/internal/domain"
)

type UserModel struct {
	ID                 string  `gorm:"primaryKey;type:varchar(32)"`
	Username           string  `gorm:"uniqueIndex;size:64;not null"`
	Email              string  `gorm:"uniqueIndex;size:255;not null"`
	FirstName          string  `gorm:"size:64;not null"`
	LastName           string  `gorm:"size:64;not null"`
	PasswordHash       string  `gorm:"size:100;not null"`
	Role               string  `gorm:"size:16;not null;default:GUEST"`
	IsEnabled          bool    `gorm:"not null;default:true"`
	ResetPasswordToken *string `gorm:"size:64;index"`
	VerifyToken        *string `gorm:"size:64;index"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }

func (m *UserModel) ToDomain() *domain.User {
	return &domain.User{
		ID:                 m.ID,
		Username:           m.Username,
		Email:              m.Email,
		PasswordHash:       m.PasswordHash,
		FirstName:          m.FirstName,
		LastName:           m.LastName,
		Role:               domain.Role(m.Role),
		IsEnabled:          m.IsEnabled,
		ResetPasswordToken: m.ResetPasswordToken,
		VerifyToken:        m.VerifyToken,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func FromDomain(u *domain.User) *UserModel {
	return &UserModel{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		PasswordHash:       u.PasswordHash,
		Role:               string(u.Role),
		IsEnabled:          u.IsEnabled,
		ResetPasswordToken: u.ResetPasswordToken,
		VerifyToken:        u.VerifyToken,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}
