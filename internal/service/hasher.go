package service

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher 密码哈希
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hashed, plain string) bool
}

// BcryptHasher bcrypt 实现，cost 为 0 时使用默认值
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Compare(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
