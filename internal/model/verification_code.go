package model

import (
	"time"
)

// CodeIntent 验证码用途
type CodeIntent string

const (
	IntentActivation    CodeIntent = "activation"
	IntentPasswordReset CodeIntent = "password_reset"
)

// Valid 是否为已知用途
func (i CodeIntent) Valid() bool {
	return i == IntentActivation || i == IntentPasswordReset
}

// VerificationCode 一次性验证码
// (shop_id, intent) 唯一：同一账号同一用途最多一条未使用的验证码
type VerificationCode struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	ShopID    int64      `gorm:"not null;uniqueIndex:idx_code_owner_intent"`
	Intent    CodeIntent `gorm:"size:20;not null;uniqueIndex:idx_code_owner_intent"`
	Code      string     `gorm:"size:64;not null;index"`
	ExpiresAt time.Time  `gorm:"not null;index"`
	CreatedAt time.Time
}

func (VerificationCode) TableName() string {
	return "verification_codes"
}

// Expired 以校验时刻的时钟为准
func (v *VerificationCode) Expired(now time.Time) bool {
	return v.ExpiresAt.Before(now)
}
