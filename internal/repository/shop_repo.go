package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"shopfront_api_202610/internal/model"
)

// ==================== 接口定义 ====================

// ShopRepository 店铺账号仓储接口
// GetByX 系列在记录不存在时返回 (nil, nil)
type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	GetByID(ctx context.Context, id int64) (*model.Shop, error)
	GetByEmail(ctx context.Context, email string) (*model.Shop, error)
	GetByPhoneNumber(ctx context.Context, phoneNumber string) (*model.Shop, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error

	// MarkVerified 条件更新 is_verified=false -> true
	// 返回 false 表示账号已被激活（或不存在），调用方据此判定重复激活
	MarkVerified(ctx context.Context, id int64) (bool, error)

	WithTx(tx *gorm.DB) ShopRepository
}

// ==================== 仓储实现 ====================

type shopRepo struct {
	db *gorm.DB
}

// NewShopRepository 创建店铺仓储
func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepo{db: db}
}

func (r *shopRepo) WithTx(tx *gorm.DB) ShopRepository {
	return &shopRepo{db: tx}
}

func (r *shopRepo) Create(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *shopRepo) GetByID(ctx context.Context, id int64) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).First(&shop, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepo) GetByEmail(ctx context.Context, email string) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepo) GetByPhoneNumber(ctx context.Context, phoneNumber string) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).Where("phone_number = ?", phoneNumber).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Shop{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *shopRepo) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	return r.db.WithContext(ctx).
		Model(&model.Shop{}).
		Where("id = ?", id).
		Update("password", hashedPassword).Error
}

func (r *shopRepo) MarkVerified(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Shop{}).
		Where("id = ? AND is_verified = ?", id, false).
		Update("is_verified", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
