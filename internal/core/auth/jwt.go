package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken 签名不符、过期、格式错误统一返回，不暴露具体原因
	ErrInvalidToken = errors.New("invalid token")
	ErrSigning      = errors.New("token signing failed")
)

// Claims 只携带主体 id 和过期时间
type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time // 测试注入；nil 用 time.Now
}

func NewJWTer(secret string, ttl time.Duration) *JWTer {
	return &JWTer{Secret: []byte(secret), TTL: ttl}
}

func (j *JWTer) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *JWTer) Issue(principalID string) (string, error) {
	if len(j.Secret) == 0 || principalID == "" {
		return "", ErrSigning
	}
	claims := Claims{
		ID: principalID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(j.now().Add(j.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(j.Secret)
	if err != nil {
		return "", errors.Join(ErrSigning, err)
	}
	return s, nil
}

// Validate 返回 token 中的主体 id；任何失败都是 ErrInvalidToken
func (j *JWTer) Validate(tokenStr string) (string, error) {
	if tokenStr == "" || len(j.Secret) == 0 {
		return "", ErrInvalidToken
	}
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return j.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return "", ErrInvalidToken
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.ID == "" {
		return "", ErrInvalidToken
	}
	return c.ID, nil
}
