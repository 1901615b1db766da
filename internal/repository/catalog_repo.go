package repository

import (
	"context"

	"gorm.io/gorm"

	"shopfront_api_202610/internal/model"
)

// ==================== CatalogRepository 分类/标签仓储 ====================

// CatalogRepository 分类与标签是商品关联的权威集合
type CatalogRepository interface {
	// FindCategoriesByIDs 按成员查找，不存在的 ID 直接忽略
	FindCategoriesByIDs(ctx context.Context, ids []int64) ([]model.Category, error)
	FindTagsByIDs(ctx context.Context, ids []int64) ([]model.Tag, error)

	ListCategories(ctx context.Context) ([]model.Category, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	CreateTag(ctx context.Context, tag *model.Tag) error

	WithTx(tx *gorm.DB) CatalogRepository
}

type catalogRepo struct {
	db *gorm.DB
}

// NewCatalogRepository 创建分类/标签仓储
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) WithTx(tx *gorm.DB) CatalogRepository {
	return &catalogRepo{db: tx}
}

func (r *catalogRepo) FindCategoriesByIDs(ctx context.Context, ids []int64) ([]model.Category, error) {
	categories := []model.Category{}
	if len(ids) == 0 {
		return categories, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&categories).Error
	return categories, err
}

func (r *catalogRepo) FindTagsByIDs(ctx context.Context, ids []int64) ([]model.Tag, error) {
	tags := []model.Tag{}
	if len(ids) == 0 {
		return tags, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&tags).Error
	return tags, err
}

func (r *catalogRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).Order("name").Find(&categories).Error
	return categories, err
}

func (r *catalogRepo) ListTags(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).Order("name").Find(&tags).Error
	return tags, err
}

func (r *catalogRepo) CreateCategory(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *catalogRepo) CreateTag(ctx context.Context, tag *model.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}
