package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// OneTimeDigits 随机后缀位数
const OneTimeDigits = 7

var oneTimeMax = big.NewInt(10_000_000)

var ErrEmptyUserID = errors.New("one-time token requires a user id")

// OneTimeTokens 生成重置密码/邮箱验证用的一次性令牌：userID + 7 位补零随机数
type OneTimeTokens struct {
	Rand io.Reader // nil 用 crypto/rand
}

func (g OneTimeTokens) Generate(userID string) (string, error) {
	if userID == "" {
		return "", ErrEmptyUserID
	}
	r := g.Rand
	if r == nil {
		r = rand.Reader
	}
	n, err := rand.Int(r, oneTimeMax)
	if err != nil {
		return "", fmt.Errorf("one-time token: %w", err)
	}
	return fmt.Sprintf("%s%0*d", userID, OneTimeDigits, n.Int64()), nil
}
