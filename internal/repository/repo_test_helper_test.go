package repository

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopfront_api_202610/internal/model"
)

// setupRepoTestDB 内存 SQLite，单连接避免 :memory: 多连接各自为库
func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

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

func seedShop(t *testing.T, db *gorm.DB, email, phone string) *model.Shop {
	t.Helper()

	shop := &model.Shop{
		ShopName:    "shop-" + phone,
		Email:       email,
		PhoneNumber: phone,
		Password:    "hashed",
		Role:        model.RoleShop,
	}
	if err := db.Create(shop).Error; err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}
	return shop
}
