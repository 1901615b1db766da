package dto

import (
	"time"

	"shopfront_api_202610/internal/model"
)

// ==================== 注册 / 激活 ====================

// SignupRequest 店铺注册
type SignupRequest struct {
	ShopName    string `json:"shop_name" binding:"required,min=2,max=100"`
	Email       string `json:"email" binding:"required,email,max=255"`
	PhoneNumber string `json:"phone_number" binding:"required,min=5,max=32"`
	Password    string `json:"password" binding:"required,min=6,max=100"`
}

// ActivateRequest 激活账号
type ActivateRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// CodeSentResponse 验证码已发送
type CodeSentResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ==================== 登录 ====================

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse 激活/登录响应
type AuthResponse struct {
	Shop  *model.Shop `json:"shop"`
	Role  string      `json:"role"`
	Token string      `json:"token"`
}

// ==================== 密码 ====================

// ForgotPasswordRequest 申请重置密码
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest 验证码重置密码
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=100"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=100"`
}

// ==================== 资料 ====================

// UpdateShopRequest 只更新非空字段
type UpdateShopRequest struct {
	ShopName    string `json:"shop_name" binding:"omitempty,min=2,max=100"`
	PhoneNumber string `json:"phone_number" binding:"omitempty,min=5,max=32"`
	Avatar      string `json:"avatar" binding:"omitempty,url,max=512"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// ShopBrief 商品详情中的店铺公开字段
type ShopBrief struct {
	ID       int64  `json:"id"`
	Avatar   string `json:"avatar"`
	ShopName string `json:"shop_name"`
	Email    string `json:"email"`
}
