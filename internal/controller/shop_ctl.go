package controller

import (
	"github.com/gin-gonic/gin"

	"shopfront_api_202610/internal/api/dto"
	"shopfront_api_202610/internal/middleware"
	"shopfront_api_202610/internal/service"
)

type ShopController struct {
	shops  *service.ShopService
	verify *service.VerificationService
}

func NewShopController(shops *service.ShopService, verify *service.VerificationService) *ShopController {
	return &ShopController{shops: shops, verify: verify}
}

// ==================== 注册与激活 ====================

// Signup 店铺注册，发送激活验证码
func (ctrl *ShopController) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	delivery, err := ctrl.shops.Signup(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Verification code sent, check your email", dto.CodeSentResponse{
		Email:     delivery.Email,
		ExpiresAt: delivery.ExpiresAt,
	})
}

// Activate 验证码激活账号
func (ctrl *ShopController) Activate(c *gin.Context) {
	var req dto.ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := ctrl.verify.Activate(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Account activated successfully", dto.AuthResponse{
		Shop:  res.Shop,
		Role:  res.Shop.Role,
		Token: res.Token,
	})
}

// Login 邮箱密码登录
func (ctrl *ShopController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := ctrl.shops.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Login successful", dto.AuthResponse{
		Shop:  res.Shop,
		Role:  res.Shop.Role,
		Token: res.Token,
	})
}

// ==================== 密码 ====================

func (ctrl *ShopController) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	delivery, err := ctrl.verify.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Verification code sent, check your email", dto.CodeSentResponse{
		Email:     delivery.Email,
		ExpiresAt: delivery.ExpiresAt,
	})
}

func (ctrl *ShopController) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := ctrl.verify.ConfirmPasswordReset(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Password reset successful", nil)
}

func (ctrl *ShopController) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	shopID := middleware.GetShopID(c)
	if err := ctrl.verify.ChangePassword(c.Request.Context(), shopID, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Password updated successfully", nil)
}

// ==================== 资料 ====================

// Me 当前登录店铺
func (ctrl *ShopController) Me(c *gin.Context) {
	shop, err := ctrl.shops.GetShop(c.Request.Context(), middleware.GetShopID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "success", shop)
}

func (ctrl *ShopController) UpdateMe(c *gin.Context) {
	var req dto.UpdateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	shop, err := ctrl.shops.UpdateShop(c.Request.Context(), middleware.GetShopID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Updated successfully", shop)
}

func (ctrl *ShopController) GetShop(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	shop, err := ctrl.shops.GetShop(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "success", shop)
}
