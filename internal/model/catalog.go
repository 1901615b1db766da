package model

// Category 商品分类
type Category struct {
	BaseModel
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

func (Category) TableName() string {
	return "categories"
}

// Tag 商品标签
type Tag struct {
	BaseModel
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

func (Tag) TableName() string {
	return "tags"
}

// AllModels 参与自动迁移的模型，顺序即建表顺序
func AllModels() []interface{} {
	return []interface{}{
		&Shop{}, &VerificationCode{},
		&Category{}, &Tag{},
		&Product{}, &ProductVariant{},
	}
}
