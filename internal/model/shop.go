package model

import (
	"gorm.io/gorm"
)

// 账号角色
const (
	RoleShop  = "shop"
	RoleAdmin = "admin"
)

// Shop 店铺账号（登录主体）
type Shop struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// 1. 身份
	ShopName    string `gorm:"size:100;not null" json:"shop_name"`
	Email       string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PhoneNumber string `gorm:"size:32;uniqueIndex;not null" json:"phone_number"`
	Password    string `gorm:"size:255;not null" json:"-"` // bcrypt 哈希，永不输出

	// 2. 资料
	Avatar      string `gorm:"size:512" json:"avatar"`
	Description string `gorm:"type:text" json:"description"`

	// 3. 状态
	Role       string `gorm:"size:20;not null;default:'shop'" json:"role"`
	IsVerified bool   `gorm:"not null;default:false" json:"is_verified"`

	// 4. 关联
	VerificationCodes []VerificationCode `gorm:"foreignKey:ShopID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (Shop) TableName() string {
	return "shops"
}
