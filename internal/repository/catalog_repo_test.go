package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"shopfront_api_202610/internal/model"
)

func TestCatalogRepo_FindByIDs(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateTag(ctx, &model.Tag{Name: "handmade"}))
	require.NoError(t, repo.CreateTag(ctx, &model.Tag{Name: "vintage"}))

	tags, err := repo.FindTagsByIDs(ctx, []int64{1, 2, 42})
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	tags, err = repo.FindTagsByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestCatalogRepo_DuplicateName(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateCategory(ctx, &model.Category{Name: "mugs"}))
	err := repo.CreateCategory(ctx, &model.Category{Name: "mugs"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	list, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
