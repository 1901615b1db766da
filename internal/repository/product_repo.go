package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"shopfront_api_202610/internal/model"
)

// ==================== 接口定义 ====================

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// Create 写入商品及其分类/标签关联，不写变体
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)

	// Delete 删除商品及其分类/标签关联行，变体需先行删除
	Delete(ctx context.Context, product *model.Product) error

	// 变体操作
	CreateVariants(ctx context.Context, variants []model.ProductVariant) error
	DeleteVariantsByProductID(ctx context.Context, productID int64) (int64, error)

	// 事务由 UnitOfWork 统一开启
	WithTx(tx *gorm.DB) ProductRepository
}

// ==================== 过滤条件 ====================

// ProductFilter 商品过滤条件
type ProductFilter struct {
	Keyword  string // 商品名模糊匹配，不区分大小写
	Category string // 分类名精确匹配
	Page     int
	PageSize int
}

const variantBatchSize = 100

// shopPublicColumns 商品详情中店铺只暴露这些字段
var shopPublicColumns = []string{"id", "avatar", "shop_name", "email"}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Omit("Variants", "Shop").Create(product).Error
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Preload("Shop", selectShopPublic).
		Preload("Categories").
		Preload("Tags").
		First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.Category != "" {
		query = query.
			Joins("JOIN product_categories ON product_categories.product_id = products.id").
			Joins("JOIN categories ON categories.id = product_categories.category_id").
			Where("categories.name = ?", filter.Category)
	}

	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		query = query.Where("LOWER(products.name) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(kw))+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 10
	}
	offset := (filter.Page - 1) * filter.PageSize

	err := query.
		Preload("Variants").
		Preload("Shop", selectShopPublic).
		Preload("Categories").
		Order("products.created_at DESC").
		Order("products.id DESC").
		Offset(offset).
		Limit(filter.PageSize).
		Find(&products).Error

	return products, total, err
}

func (r *productRepo) Delete(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Select("Categories", "Tags").Delete(product).Error
}

func (r *productRepo) CreateVariants(ctx context.Context, variants []model.ProductVariant) error {
	if len(variants) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Product").CreateInBatches(variants, variantBatchSize).Error
}

func (r *productRepo) DeleteVariantsByProductID(ctx context.Context, productID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&model.ProductVariant{})
	return result.RowsAffected, result.Error
}

// ==================== 事务支持 ====================

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{db: tx}
}

// ==================== 辅助函数 ====================

func selectShopPublic(db *gorm.DB) *gorm.DB {
	return db.Select(shopPublicColumns)
}

// escapeLike 转义 LIKE 通配符
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
