package model

import (
	"time"
)

// BaseModel 公共字段
// 商品、变体采用物理删除，需要软删除的实体自行声明 DeletedAt
type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
