package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost 存储口令统一使用的 bcrypt 代价
const PasswordCost = 10

var ErrEmptyPassword = errors.New("password must not be empty")

// PasswordCodec 单向口令编码；同一明文每次生成不同摘要
type PasswordCodec struct {
	Cost int
}

func NewPasswordCodec(cost int) PasswordCodec {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = PasswordCost
	}
	return PasswordCodec{Cost: cost}
}

func (p PasswordCodec) Hash(pw string) (string, error) {
	if pw == "" {
		return "", ErrEmptyPassword
	}
	cost := p.Cost
	if cost == 0 {
		cost = PasswordCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify 摘要损坏也只返回 false，不报错
func (p PasswordCodec) Verify(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
