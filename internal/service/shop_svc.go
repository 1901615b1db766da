package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"shopfront_api_202610/internal/api/dto"
	"shopfront_api_202610/internal/apperr"
	"shopfront_api_202610/internal/middleware"
	"shopfront_api_202610/internal/model"
	"shopfront_api_202610/internal/repository"
)

// ==================== ShopService 店铺账号服务 ====================

type ShopService struct {
	uow    *repository.UnitOfWork
	verify *VerificationService
	hasher PasswordHasher
	tokens *middleware.TokenIssuer
	log    *zerolog.Logger
}

func NewShopService(
	uow *repository.UnitOfWork,
	verify *VerificationService,
	hasher PasswordHasher,
	tokens *middleware.TokenIssuer,
	log *zerolog.Logger,
) *ShopService {
	return &ShopService{
		uow:    uow,
		verify: verify,
		hasher: hasher,
		tokens: tokens,
		log:    log,
	}
}

// Signup 注册店铺并发送激活码
// 邮箱已注册但未激活时只重发激活码
func (s *ShopService) Signup(ctx context.Context, req *dto.SignupRequest) (*Delivery, error) {
	email := normalizeEmail(req.Email)
	phone := strings.TrimSpace(req.PhoneNumber)
	if email == "" || phone == "" || req.Password == "" || strings.TrimSpace(req.ShopName) == "" {
		return nil, apperr.Validation("shop_name, email, phone_number and password are required")
	}

	existing, err := s.uow.Shops.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if existing != nil {
		if existing.IsVerified {
			return nil, apperr.Conflict("shop already exists and is verified")
		}
		return s.verify.IssueAndSend(ctx, existing, model.IntentActivation)
	}

	byPhone, err := s.uow.Shops.GetByPhoneNumber(ctx, phone)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if byPhone != nil {
		return nil, apperr.Conflict("Shop with this Phone number already exists")
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	shop := &model.Shop{
		ShopName:    strings.TrimSpace(req.ShopName),
		Email:       email,
		PhoneNumber: phone,
		Password:    hashed,
		Role:        model.RoleShop,
	}
	if err := s.uow.Shops.Create(ctx, shop); err != nil {
		// 并发注册时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("shop with this email or phone number already exists")
		}
		return nil, apperr.Internal(err)
	}

	s.log.Info().Int64("shop_id", shop.ID).Msg("shop signed up")
	return s.verify.IssueAndSend(ctx, shop, model.IntentActivation)
}

// Login 登录
// 未激活账号会重新收到激活码，并返回未激活错误
func (s *ShopService) Login(ctx context.Context, req *dto.LoginRequest) (*AuthResult, error) {
	shop, err := s.uow.Shops.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if shop == nil {
		return nil, apperr.NotFound("shop Not Found")
	}

	if !shop.IsVerified {
		if _, err := s.verify.IssueAndSend(ctx, shop, model.IntentActivation); err != nil {
			// 冷却期内不重发，仍提示未激活
			if !errors.Is(err, apperr.ErrValidation) {
				return nil, err
			}
			s.log.Debug().Int64("shop_id", shop.ID).Err(err).Msg("activation code not reissued")
		}
		return nil, apperr.Validation("Account not activated, check your email to enter the code.")
	}

	if !s.hasher.Compare(shop.Password, req.Password) {
		return nil, apperr.InvalidCredentials()
	}

	token, err := s.tokens.Sign(shop.ID, shop.Email, shop.Role)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &AuthResult{Shop: redact(shop), Token: token}, nil
}

// GetShop 公开资料
func (s *ShopService) GetShop(ctx context.Context, id int64) (*model.Shop, error) {
	shop, err := s.uow.Shops.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if shop == nil {
		return nil, apperr.NotFound("Shop does not exist")
	}
	return redact(shop), nil
}

// UpdateShop 只更新非空字段
func (s *ShopService) UpdateShop(ctx context.Context, id int64, req *dto.UpdateShopRequest) (*model.Shop, error) {
	shop, err := s.uow.Shops.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if shop == nil {
		return nil, apperr.NotFound("Shop does not exist")
	}

	fields := map[string]interface{}{}
	if v := strings.TrimSpace(req.ShopName); v != "" {
		fields["shop_name"] = v
	}
	if v := strings.TrimSpace(req.PhoneNumber); v != "" && v != shop.PhoneNumber {
		owner, err := s.uow.Shops.GetByPhoneNumber(ctx, v)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if owner != nil && owner.ID != shop.ID {
			return nil, apperr.Conflict("Shop with this Phone number already exists")
		}
		fields["phone_number"] = v
	}
	if v := strings.TrimSpace(req.Avatar); v != "" {
		fields["avatar"] = v
	}
	if v := strings.TrimSpace(req.Description); v != "" {
		fields["description"] = v
	}

	if len(fields) > 0 {
		if err := s.uow.Shops.UpdateFields(ctx, shop.ID, fields); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperr.Conflict("Shop with this Phone number already exists")
			}
			return nil, apperr.Internal(err)
		}
	}

	return s.GetShop(ctx, shop.ID)
}
