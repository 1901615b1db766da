package repository

import (
	"context"

	"gorm.io/gorm"
)

// UnitOfWork 跨仓储事务
// 验证码与账号状态、商品与分类/标签需要在同一事务内读写
type UnitOfWork struct {
	db       *gorm.DB
	Shops    ShopRepository
	Codes    VerificationCodeRepository
	Products ProductRepository
	Catalog  CatalogRepository
}

// NewUnitOfWork 创建工作单元
func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{
		db:       db,
		Shops:    NewShopRepository(db),
		Codes:    NewVerificationCodeRepository(db),
		Products: NewProductRepository(db),
		Catalog:  NewCatalogRepository(db),
	}
}

// Transaction 执行事务，fn 返回错误时整体回滚
func (u *UnitOfWork) Transaction(ctx context.Context, fn func(tx *UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UnitOfWork{
			db:       tx,
			Shops:    u.Shops.WithTx(tx),
			Codes:    u.Codes.WithTx(tx),
			Products: u.Products.WithTx(tx),
			Catalog:  u.Catalog.WithTx(tx),
		})
	})
}
