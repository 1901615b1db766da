package service

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shopfront_api_202610/internal/apperr"
	"shopfront_api_202610/internal/config"
	"shopfront_api_202610/internal/middleware"
	"shopfront_api_202610/internal/model"
	"shopfront_api_202610/internal/repository"
	"shopfront_api_202610/pkg/utils"
)

// ==================== VerificationService 验证码流程 ====================

// 各用途的邮件主题
var codeSubjects = map[model.CodeIntent]string{
	model.IntentActivation:    "Verify your email",
	model.IntentPasswordReset: "Request to reset password",
}

// Delivery 验证码投递回执
type Delivery struct {
	Email     string           `json:"email"`
	Intent    model.CodeIntent `json:"intent"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// AuthResult 激活/登录结果
type AuthResult struct {
	Shop  *model.Shop
	Token string
}

// VerificationService 签发、校验、作废一次性验证码
type VerificationService struct {
	uow     *repository.UnitOfWork
	sender  Sender
	hasher  PasswordHasher
	tokens  *middleware.TokenIssuer
	limiter *middleware.CooldownLimiter
	cfg     config.VerifyConfig
	log     *zerolog.Logger
	now     func() time.Time
}

// NewVerificationService 创建验证码服务
func NewVerificationService(
	uow *repository.UnitOfWork,
	sender Sender,
	hasher PasswordHasher,
	tokens *middleware.TokenIssuer,
	limiter *middleware.CooldownLimiter,
	cfg config.VerifyConfig,
	log *zerolog.Logger,
) *VerificationService {
	return &VerificationService{
		uow:     uow,
		sender:  sender,
		hasher:  hasher,
		tokens:  tokens,
		limiter: limiter,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

// ==================== 签发 ====================

// IssueAndSend 生成验证码并替换该账号同用途的旧验证码，然后发送
func (s *VerificationService) IssueAndSend(ctx context.Context, shop *model.Shop, intent model.CodeIntent) (*Delivery, error) {
	if !intent.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown code intent: %s", intent))
	}
	subject := codeSubjects[intent]

	key := middleware.CodeKey(shop.Email, string(intent))
	if res := s.limiter.Check(key, s.cfg.ResendInterval); !res.Allowed {
		wait := int(math.Ceil(res.RetryAfter.Seconds()))
		return nil, apperr.Validation(fmt.Sprintf("Please wait %d seconds before requesting another code", wait))
	}

	code, err := utils.GenerateNumericCode(s.cfg.CodeLength)
	if err != nil {
		s.limiter.Reset(key)
		return nil, apperr.Internal(err)
	}

	vc := &model.VerificationCode{
		ShopID:    shop.ID,
		Intent:    intent,
		Code:      code,
		ExpiresAt: s.now().Add(s.cfg.CodeTTL),
	}
	err = s.uow.Transaction(ctx, func(tx *repository.UnitOfWork) error {
		return tx.Codes.Replace(ctx, vc)
	})
	if err != nil {
		s.limiter.Reset(key)
		return nil, apperr.Internal(fmt.Errorf("save verification code: %w", err))
	}

	if err := s.sender.Send(ctx, shop.Email, subject, code); err != nil {
		s.limiter.Reset(key)
		return nil, apperr.Operation("Failed to send verification code", http.StatusInternalServerError, err)
	}

	s.log.Info().
		Int64("shop_id", shop.ID).
		Str("intent", string(intent)).
		Time("expires_at", vc.ExpiresAt).
		Msg("verification code issued")

	return &Delivery{Email: shop.Email, Intent: intent, ExpiresAt: vc.ExpiresAt}, nil
}

// ==================== 激活 ====================

// Activate 校验激活码并激活账号，成功后签发令牌
func (s *VerificationService) Activate(ctx context.Context, email, code string) (*AuthResult, error) {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" {
		return nil, apperr.Validation("email is required")
	}
	if code == "" {
		return nil, apperr.Validation("OTP Code is required")
	}

	shop, err := s.uow.Shops.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if shop == nil {
		return nil, apperr.NotFound("Shop does not exist")
	}

	vc, err := s.checkCode(ctx, shop.ID, model.IntentActivation, code)
	if err != nil {
		return nil, err
	}

	if shop.IsVerified {
		return nil, apperr.AlreadyActivated()
	}

	err = s.uow.Transaction(ctx, func(tx *repository.UnitOfWork) error {
		consumed, err := tx.Codes.Consume(ctx, vc.ID)
		if err != nil {
			return err
		}
		if !consumed {
			return apperr.InvalidCode()
		}

		// 条件更新，并发激活时只有一个请求能把 false 改为 true
		activated, err := tx.Shops.MarkVerified(ctx, shop.ID)
		if err != nil {
			return err
		}
		if !activated {
			return apperr.AlreadyActivated()
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	shop.IsVerified = true

	token, err := s.tokens.Sign(shop.ID, shop.Email, shop.Role)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.Info().Int64("shop_id", shop.ID).Msg("shop activated")
	return &AuthResult{Shop: redact(shop), Token: token}, nil
}

// ==================== 密码重置 ====================

// RequestPasswordReset 发送重置密码验证码
func (s *VerificationService) RequestPasswordReset(ctx context.Context, email string) (*Delivery, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperr.Validation("email is required")
	}

	shop, err := s.uow.Shops.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if shop == nil {
		return nil, apperr.NotFound("Shop does not exist")
	}

	return s.IssueAndSend(ctx, shop, model.IntentPasswordReset)
}

// ConfirmPasswordReset 校验重置码并设置新密码，不签发令牌
func (s *VerificationService) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" {
		return apperr.Validation("email is required")
	}
	if code == "" {
		return apperr.Validation("OTP Code is required")
	}
	if newPassword == "" {
		return apperr.Validation("new password is required")
	}

	shop, err := s.uow.Shops.GetByEmail(ctx, email)
	if err != nil {
		return apperr.Internal(err)
	}
	if shop == nil {
		return apperr.NotFound("Shop does not exist")
	}

	vc, err := s.checkCode(ctx, shop.ID, model.IntentPasswordReset, code)
	if err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}

	err = s.uow.Transaction(ctx, func(tx *repository.UnitOfWork) error {
		if err := tx.Shops.UpdatePassword(ctx, shop.ID, hashed); err != nil {
			return err
		}
		consumed, err := tx.Codes.Consume(ctx, vc.ID)
		if err != nil {
			return err
		}
		if !consumed {
			return apperr.InvalidCode()
		}
		return nil
	})
	if err != nil {
		return asAppError(err)
	}

	s.log.Info().Int64("shop_id", shop.ID).Msg("password reset")
	return nil
}

// ChangePassword 已登录账号修改密码
func (s *VerificationService) ChangePassword(ctx context.Context, shopID int64, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return apperr.Validation("old and new password are required")
	}

	shop, err := s.uow.Shops.GetByID(ctx, shopID)
	if err != nil {
		return apperr.Internal(err)
	}
	if shop == nil {
		return apperr.NotFound("Shop does not exist")
	}

	if !s.hasher.Compare(shop.Password, oldPassword) {
		return apperr.InvalidCredentials()
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.uow.Shops.UpdatePassword(ctx, shop.ID, hashed); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// ==================== 辅助函数 ====================

// checkCode 验证码不存在与属于其他账号返回同一错误
func (s *VerificationService) checkCode(ctx context.Context, shopID int64, intent model.CodeIntent, code string) (*model.VerificationCode, error) {
	vc, err := s.uow.Codes.Find(ctx, shopID, intent, code)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if vc == nil {
		return nil, apperr.InvalidCode()
	}
	if vc.Expired(s.now()) {
		return nil, apperr.ExpiredCode()
	}
	return vc, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// redact 返回去掉密码哈希的副本
func redact(shop *model.Shop) *model.Shop {
	clone := *shop
	clone.Password = ""
	return &clone
}

// asAppError 事务内返回的业务错误原样透出，其余视为内部错误
func asAppError(err error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Internal(err)
}
