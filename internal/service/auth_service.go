package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"redflix-api/internal/core/apperr"
	"redflix-api/internal/core/metrics"
	"redflix-api/internal/domain"
)

const (
	MsgInvalidCredentials = "Invalid username or password."
	MsgInvalidPassword    = "Password must be alphanumeric and at least 8 characters long."
	MsgInvalidToken       = "Invalid token."

	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt 只取前 72 字节
	minTokenLen    = 8
)

// hasher 生成失败时的占位摘要，格式合法，不对应任何口令
const fallbackDummyHash = "$2a$10$nRwEHKsFZCJ1zGcJ0FNaF.wEaDPjzQNlVLWtKGFY90m54skdVdIk."

type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hashed string) bool
}

type TokenIssuer interface {
	Issue(principalID string) (string, error)
}

type OneTimeTokenGenerator interface {
	Generate(userID string) (string, error)
}

type AuthService struct {
	users   domain.UserRepository
	hasher  Hasher
	tokens  TokenIssuer
	oneTime OneTimeTokenGenerator
	log     *zap.Logger

	// 用户不存在时也跑一次比对，响应耗时不暴露账号是否存在
	dummyHash string
}

func NewAuthService(users domain.UserRepository, hasher Hasher, tokens TokenIssuer, oneTime OneTimeTokenGenerator, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("auth")
	dummy, err := hasher.Hash("redflix-placeholder-0")
	if err != nil {
		log.Warn("dummy hash generation failed, using fallback", zap.Error(err))
		dummy = fallbackDummyHash
	}
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		oneTime:   oneTime,
		log:       log,
		dummyHash: dummy,
	}
}

type LoginResult struct {
	User        *domain.User `json:"user"`
	BearerToken string       `json:"bearerToken"`
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

// ValidatePassword 字母数字且至少 8 位
func ValidatePassword(pw string) error {
	if len(pw) < minPasswordLen || len(pw) > maxPasswordLen {
		return apperr.BadRequest(MsgInvalidPassword)
	}
	for _, r := range pw {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return apperr.BadRequest(MsgInvalidPassword)
		}
	}
	return nil
}

// Login 不存在、已禁用、密码错误统一返回同一条 BadRequest
func (s *AuthService) Login(ctx context.Context, username, password string) (res *LoginResult, err error) {
	defer func() { metrics.AuthFlowTotal.WithLabelValues("login", outcome(err)).Inc() }()

	u, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.hasher.Verify(password, s.dummyHash)
		return nil, apperr.BadRequest(MsgInvalidCredentials)
	}
	if err != nil {
		return nil, apperr.Repository(err)
	}
	ok := s.hasher.Verify(password, u.PasswordHash)
	if !ok || !u.IsEnabled {
		return nil, apperr.BadRequest(MsgInvalidCredentials)
	}

	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		s.log.Error("issue session token", zap.String("user_id", u.ID), zap.Error(err))
		return nil, apperr.Repository(err)
	}
	return &LoginResult{User: u, BearerToken: tok}, nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (u *domain.User, err error) {
	defer func() { metrics.AuthFlowTotal.WithLabelValues("register", outcome(err)).Inc() }()

	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	unique, err := s.users.IsUsernameUnique(ctx, in.Username)
	if err != nil {
		return nil, apperr.Repository(err)
	}
	if !unique {
		return nil, apperr.Conflict(fmt.Sprintf("Username %s is already taken.", in.Username))
	}
	unique, err = s.users.IsEmailUnique(ctx, in.Email)
	if err != nil {
		return nil, apperr.Repository(err)
	}
	if !unique {
		return nil, apperr.Conflict(fmt.Sprintf("Email %s is already registered.", in.Email))
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Repository(err)
	}
	u = &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		Role:         domain.RoleGuest,
		IsEnabled:    true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, storeErr(err)
	}
	s.log.Info("user registered", zap.String("user_id", u.ID))
	return u, nil
}

// ForgotPassword 生成并保存重置令牌；投递由调用方负责
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (tok string, err error) {
	defer func() { metrics.AuthFlowTotal.WithLabelValues("forgot_password", outcome(err)).Inc() }()

	u, err := s.findByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	tok, err = s.oneTime.Generate(u.ID)
	if err != nil {
		return "", apperr.Repository(err)
	}
	u.ResetPasswordToken = &tok
	if _, err := s.users.Update(ctx, u); err != nil {
		return "", storeErr(err)
	}
	s.log.Info("reset password token issued", zap.String("user_id", u.ID))
	return tok, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) (u *domain.User, err error) {
	defer func() { metrics.AuthFlowTotal.WithLabelValues("reset_password", outcome(err)).Inc() }()

	if len(token) < minTokenLen {
		return nil, apperr.BadRequest(MsgInvalidToken)
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	u, err = s.users.FindByResetToken(ctx, token)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, apperr.NotFound("Reset password token not found.")
	}
	if err != nil {
		return nil, apperr.Repository(err)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperr.Repository(err)
	}
	u.PasswordHash = hash
	u.ResetPasswordToken = nil
	saved, err := s.users.Update(ctx, u)
	if err != nil {
		return nil, storeErr(err)
	}
	s.log.Info("password reset", zap.String("user_id", saved.ID))
	return saved, nil
}

func (s *AuthService) RequestVerifyToken(ctx context.Context, email string) (tok string, err error) {
	defer func() { metrics.AuthFlowTotal.WithLabelValues("request_verify_token", outcome(err)).Inc() }()

	u, err := s.findByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	tok, err = s.oneTime.Generate(u.ID)
	if err != nil {
		return "", apperr.Repository(err)
	}
	u.VerifyToken = &tok
	if _, err := s.users.Update(ctx, u); err != nil {
		return "", storeErr(err)
	}
	return tok, nil
}

// VerifyToken 只有 GUEST 会被提升为 CUSTOMER，其它角色仅清掉令牌
func (s *AuthService) VerifyToken(ctx context.Context, token string) (u *domain.User, err error) {
	defer func() { metrics.AuthFlowTotal.WithLabelValues("verify_token", outcome(err)).Inc() }()

	if len(token) < minTokenLen {
		return nil, apperr.BadRequest(MsgInvalidToken)
	}
	u, err = s.users.FindByVerifyToken(ctx, token)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, apperr.NotFound("Verify token not found.")
	}
	if err != nil {
		return nil, apperr.Repository(err)
	}
	u.VerifyToken = nil
	if u.Role == domain.RoleGuest {
		u.Role = domain.RoleCustomer
	}
	saved, err := s.users.Update(ctx, u)
	if err != nil {
		return nil, storeErr(err)
	}
	s.log.Info("user verified", zap.String("user_id", saved.ID), zap.String("role", string(saved.Role)))
	return saved, nil
}

func (s *AuthService) findByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, apperr.NotFound(fmt.Sprintf("User with email %s not found.", email))
	}
	if err != nil {
		return nil, apperr.Repository(err)
	}
	return u, nil
}

// storeErr 存储层哨兵错误转成业务分类，其余原样归为 Repository
func storeErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return apperr.NotFound("User not found.")
	case errors.Is(err, domain.ErrUserExists):
		return apperr.Conflict("Username or email already in use.")
	default:
		return apperr.Repository(err)
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return apperr.KindOf(err).String()
}
