package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"shopfront_api_202610/internal/model"
)

// ==================== VerificationCodeRepository 验证码仓储 ====================

// VerificationCodeRepository 验证码仓储接口
type VerificationCodeRepository interface {
	// Replace 删除 (shop, intent) 下的旧验证码并写入新验证码
	// 必须在事务内调用，保证任意时刻最多一条
	Replace(ctx context.Context, code *model.VerificationCode) error

	// Find 按 (shop, intent, code) 精确查找，不存在返回 (nil, nil)
	Find(ctx context.Context, shopID int64, intent model.CodeIntent, code string) (*model.VerificationCode, error)

	// Consume 删除验证码，返回是否确实删除了一行
	Consume(ctx context.Context, id int64) (bool, error)

	DeleteExpired(ctx context.Context, before time.Time) (int64, error)

	WithTx(tx *gorm.DB) VerificationCodeRepository
}

type verificationCodeRepo struct {
	db *gorm.DB
}

// NewVerificationCodeRepository 创建验证码仓储
func NewVerificationCodeRepository(db *gorm.DB) VerificationCodeRepository {
	return &verificationCodeRepo{db: db}
}

func (r *verificationCodeRepo) WithTx(tx *gorm.DB) VerificationCodeRepository {
	return &verificationCodeRepo{db: tx}
}

func (r *verificationCodeRepo) Replace(ctx context.Context, code *model.VerificationCode) error {
	db := r.db.WithContext(ctx)
	if err := db.
		Where("shop_id = ? AND intent = ?", code.ShopID, code.Intent).
		Delete(&model.VerificationCode{}).Error; err != nil {
		return err
	}
	return db.Create(code).Error
}

func (r *verificationCodeRepo) Find(ctx context.Context, shopID int64, intent model.CodeIntent, code string) (*model.VerificationCode, error) {
	var vc model.VerificationCode
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND intent = ? AND code = ?", shopID, intent, code).
		First(&vc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vc, nil
}

func (r *verificationCodeRepo) Consume(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&model.VerificationCode{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *verificationCodeRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&model.VerificationCode{})
	return result.RowsAffected, result.Error
}
