package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopfront_api_202610/internal/config"
	applog "shopfront_api_202610/internal/logger"
	"shopfront_api_202610/internal/middleware"
	"shopfront_api_202610/internal/model"
	"shopfront_api_202610/internal/repository"
)

// ==================== 测试辅助 ====================

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	// :memory: 每个连接是独立的库
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取底层连接失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

type fixture struct {
	db      *gorm.DB
	uow     *repository.UnitOfWork
	sender  *MockSender
	media   *MockMediaStore
	hasher  *BcryptHasher
	tokens  *middleware.TokenIssuer
	limiter *middleware.CooldownLimiter

	verify   *VerificationService
	shops    *ShopService
	products *ProductService
	catalog  *CatalogService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	db := setupServiceTestDB(t)
	uow := repository.NewUnitOfWork(db)

	tokens, err := middleware.NewTokenIssuer(config.JWTConfig{
		Secret:   "test-secret",
		TokenTTL: 24 * time.Hour,
		Issuer:   "shopfront-test",
	})
	if err != nil {
		t.Fatalf("创建 TokenIssuer 失败: %v", err)
	}

	f := &fixture{
		db:      db,
		uow:     uow,
		sender:  NewMockSender(ctrl),
		media:   NewMockMediaStore(ctrl),
		hasher:  NewBcryptHasher(bcrypt.MinCost),
		tokens:  tokens,
		limiter: middleware.NewCooldownLimiter(),
	}

	log := applog.Nop()
	f.verify = NewVerificationService(uow, f.sender, f.hasher, tokens, f.limiter, config.VerifyConfig{
		CodeTTL:    15 * time.Minute,
		CodeLength: 6,
	}, log)
	f.shops = NewShopService(uow, f.verify, f.hasher, tokens, log)
	f.products = NewProductService(uow, f.media, "products", log)
	f.catalog = NewCatalogService(uow)
	return f
}

// captureCode 期望向 to 发送一次验证码，并记录验证码内容
func (f *fixture) captureCode(to string) *string {
	var code string
	f.sender.EXPECT().
		Send(gomock.Any(), to, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, c string) error {
			code = c
			return nil
		})
	return &code
}

// createShop 直接写库创建店铺
func (f *fixture) createShop(t *testing.T, email, phone, password string, verified bool) *model.Shop {
	t.Helper()

	hashed, err := f.hasher.Hash(password)
	if err != nil {
		t.Fatalf("哈希密码失败: %v", err)
	}
	shop := &model.Shop{
		ShopName:    "shop-" + phone,
		Email:       email,
		PhoneNumber: phone,
		Password:    hashed,
		Role:        model.RoleShop,
		IsVerified:  verified,
	}
	if err := f.db.Create(shop).Error; err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}
	return shop
}

// countCodes 店铺名下的验证码数量
func (f *fixture) countCodes(t *testing.T, shopID int64) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&model.VerificationCode{}).Where("shop_id = ?", shopID).Count(&n).Error; err != nil {
		t.Fatalf("统计验证码失败: %v", err)
	}
	return n
}

// currentCode 店铺在该用途下的验证码，不存在返回 nil
func (f *fixture) currentCode(t *testing.T, shopID int64, intent model.CodeIntent) *model.VerificationCode {
	t.Helper()
	var codes []model.VerificationCode
	if err := f.db.Where("shop_id = ? AND intent = ?", shopID, intent).Find(&codes).Error; err != nil {
		t.Fatalf("查询验证码失败: %v", err)
	}
	if len(codes) == 0 {
		return nil
	}
	return &codes[0]
}

// wrongCode 生成一个与 code 不同的同长度验证码
func wrongCode(code string) string {
	b := []byte(code)
	if b[0] == '9' {
		b[0] = '0'
	} else {
		b[0]++
	}
	return string(b)
}
