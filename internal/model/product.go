package model

import (
	"gorm.io/datatypes"
)

type Product struct {
	BaseModel
	// --- 归属 ---
	ShopID int64 `gorm:"index;not null" json:"shop_id"`
	Shop   *Shop `gorm:"foreignKey:ShopID" json:"shop,omitempty"`

	// --- 商品基本信息 ---
	Name             string `gorm:"size:255;not null;index" json:"name"`
	ShortDescription string `gorm:"size:512" json:"short_description"`
	LongDescription  string `gorm:"type:text;not null" json:"long_description"`

	// --- 图片 (有序 URL 列表) ---
	Images datatypes.JSONSlice[string] `json:"images"`

	// --- 关联关系 ---
	Variants   []ProductVariant `gorm:"foreignKey:ProductID" json:"variants"`
	Categories []Category       `gorm:"many2many:product_categories;" json:"categories"`
	Tags       []Tag            `gorm:"many2many:product_tags;" json:"tags"`
}

func (Product) TableName() string {
	return "products"
}

// ProductVariant 商品变体，随商品在同一事务内创建，删除时先于商品删除
type ProductVariant struct {
	BaseModel
	ProductID int64    `gorm:"index;not null" json:"product_id"`
	Product   *Product `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Name string `gorm:"size:100" json:"name"`
	SKU  string `gorm:"size:100;index" json:"sku"`

	// 价格以分为单位
	OriginalPrice int64  `gorm:"not null;check:chk_variant_original_price,original_price > 0" json:"original_price"`
	SalePrice     *int64 `json:"sale_price,omitempty"`
	Stock         int    `gorm:"not null;default:0" json:"stock"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}
