package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"shopfront_api_202610/internal/model"
)

func seedCatalog(t *testing.T, db *gorm.DB) (model.Category, model.Category, model.Tag) {
	t.Helper()

	mugs := model.Category{Name: "mugs"}
	bowls := model.Category{Name: "bowls"}
	handmade := model.Tag{Name: "handmade"}
	require.NoError(t, db.Create(&mugs).Error)
	require.NoError(t, db.Create(&bowls).Error)
	require.NoError(t, db.Create(&handmade).Error)
	return mugs, bowls, handmade
}

// createProduct 复刻服务层的事务写入顺序
func createProduct(t *testing.T, uow *UnitOfWork, shopID int64, name string, categoryIDs []int64, variants []model.ProductVariant) (*model.Product, error) {
	t.Helper()
	ctx := context.Background()

	product := &model.Product{ShopID: shopID, Name: name, LongDescription: name + " description", Images: []string{"https://img.test/" + name + ".jpg"}}
	err := uow.Transaction(ctx, func(tx *UnitOfWork) error {
		categories, err := tx.Catalog.FindCategoriesByIDs(ctx, categoryIDs)
		if err != nil {
			return err
		}
		product.Categories = categories
		if err := tx.Products.Create(ctx, product); err != nil {
			return err
		}
		for i := range variants {
			variants[i].ProductID = product.ID
		}
		return tx.Products.CreateVariants(ctx, variants)
	})
	return product, err
}

func TestProductRepo_CreateResolvesKnownCategoriesOnly(t *testing.T) {
	db := setupRepoTestDB(t)
	uow := NewUnitOfWork(db)
	shop := seedShop(t, db, "a@shop.test", "100")
	mugs, _, _ := seedCatalog(t, db)

	product, err := createProduct(t, uow, shop.ID, "mug", []int64{mugs.ID, 999}, []model.ProductVariant{
		{Name: "small", OriginalPrice: 1500},
		{Name: "large", OriginalPrice: 2500},
	})
	require.NoError(t, err)

	got, err := uow.Products.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, "mugs", got.Categories[0].Name)
	assert.Len(t, got.Variants, 2)
	assert.Equal(t, []string{"https://img.test/mug.jpg"}, []string(got.Images))

	// 店铺只加载公开字段
	require.NotNil(t, got.Shop)
	assert.Equal(t, shop.ID, got.Shop.ID)
	assert.Equal(t, "a@shop.test", got.Shop.Email)
	assert.Empty(t, got.Shop.Password)
	assert.Empty(t, got.Shop.PhoneNumber)
}

func TestProductRepo_CreateRollsBackOnVariantFailure(t *testing.T) {
	db := setupRepoTestDB(t)
	uow := NewUnitOfWork(db)
	shop := seedShop(t, db, "a@shop.test", "100")
	mugs, _, _ := seedCatalog(t, db)

	_, err := createProduct(t, uow, shop.ID, "broken", []int64{mugs.ID}, []model.ProductVariant{
		{Name: "ok", OriginalPrice: 1000},
		{Name: "bad", OriginalPrice: 0}, // 违反 original_price > 0 约束
	})
	require.Error(t, err)

	var products, variants, links int64
	db.Model(&model.Product{}).Count(&products)
	db.Model(&model.ProductVariant{}).Count(&variants)
	db.Table("product_categories").Count(&links)
	assert.Zero(t, products)
	assert.Zero(t, variants)
	assert.Zero(t, links)
}

func TestProductRepo_ListFiltersAndOrder(t *testing.T) {
	db := setupRepoTestDB(t)
	uow := NewUnitOfWork(db)
	ctx := context.Background()
	shop := seedShop(t, db, "a@shop.test", "100")
	mugs, bowls, _ := seedCatalog(t, db)

	names := []string{"Blue Mug", "Red Mug", "Soup Bowl", "100%_Cotton Mug"}
	cats := [][]int64{{mugs.ID}, {mugs.ID}, {bowls.ID}, {mugs.ID}}
	base := time.Now().Add(-time.Hour)
	for i, name := range names {
		p, err := createProduct(t, uow, shop.ID, name, cats[i], []model.ProductVariant{{OriginalPrice: 100}})
		require.NoError(t, err)
		db.Model(&model.Product{}).Where("id = ?", p.ID).Update("created_at", base.Add(time.Duration(i)*time.Minute))
	}

	list, total, err := uow.Products.List(ctx, ProductFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, list, 2)
	assert.Equal(t, "100%_Cotton Mug", list[0].Name)
	assert.Equal(t, "Soup Bowl", list[1].Name)

	list, total, err = uow.Products.List(ctx, ProductFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, list, 2)
	assert.Equal(t, "Red Mug", list[0].Name)

	list, total, err = uow.Products.List(ctx, ProductFilter{Category: "bowls", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "Soup Bowl", list[0].Name)
	assert.Len(t, list[0].Categories, 1)

	list, total, err = uow.Products.List(ctx, ProductFilter{Keyword: "mug", Category: "mugs", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, list, 3)

	// 通配符按字面量匹配
	list, _, err = uow.Products.List(ctx, ProductFilter{Keyword: "0%_c", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "100%_Cotton Mug", list[0].Name)

	list, total, err = uow.Products.List(ctx, ProductFilter{Category: "lamps", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestProductRepo_DeleteOrder(t *testing.T) {
	db := setupRepoTestDB(t)
	uow := NewUnitOfWork(db)
	ctx := context.Background()
	shop := seedShop(t, db, "a@shop.test", "100")
	mugs, _, _ := seedCatalog(t, db)

	product, err := createProduct(t, uow, shop.ID, "mug", []int64{mugs.ID}, []model.ProductVariant{
		{OriginalPrice: 100}, {OriginalPrice: 200},
	})
	require.NoError(t, err)

	err = uow.Transaction(ctx, func(tx *UnitOfWork) error {
		n, err := tx.Products.DeleteVariantsByProductID(ctx, product.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(2), n)
		return tx.Products.Delete(ctx, product)
	})
	require.NoError(t, err)

	got, err := uow.Products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	var links int64
	db.Table("product_categories").Count(&links)
	assert.Zero(t, links)

	// 分类本身保留
	var categories int64
	db.Model(&model.Category{}).Count(&categories)
	assert.Equal(t, int64(2), categories)
}
