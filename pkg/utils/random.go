package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// GenerateNumericCode 生成定长数字验证码，保留前导零
func GenerateNumericCode(length int) (string, error) {
	return randomFrom("0123456789", length)
}

// randomFrom 使用 crypto/rand 均匀抽样，不做取模以免偏差
func randomFrom(charset string, length int) (string, error) {
	if length <= 0 {
		return "", errors.New("length must be positive")
	}

	max := big.NewInt(int64(len(charset)))
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(charset[n.Int64()])
	}
	return sb.String(), nil
}
