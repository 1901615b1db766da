package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"shopfront_api_202610/internal/apperr"
	"shopfront_api_202610/internal/model"
	"shopfront_api_202610/internal/repository"
)

// CatalogService 分类与标签
type CatalogService struct {
	uow *repository.UnitOfWork
}

func NewCatalogService(uow *repository.UnitOfWork) *CatalogService {
	return &CatalogService{uow: uow}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.uow.Catalog.ListCategories(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return categories, nil
}

func (s *CatalogService) ListTags(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.uow.Catalog.ListTags(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return tags, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	category := &model.Category{Name: name}
	if err := s.uow.Catalog.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("category already exists")
		}
		return nil, apperr.Internal(err)
	}
	return category, nil
}

func (s *CatalogService) CreateTag(ctx context.Context, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	tag := &model.Tag{Name: name}
	if err := s.uow.Catalog.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("tag already exists")
		}
		return nil, apperr.Internal(err)
	}
	return tag, nil
}
