package dto

import (
	"time"

	"shopfront_api_202610/internal/model"
)

// ==================== 请求 DTO ====================

// CreateProductForm multipart 表单字段，图片文件单独读取
type CreateProductForm struct {
	Name             string   `form:"name" binding:"required,max=255"`
	ShortDescription string   `form:"short_description" binding:"max=512"`
	LongDescription  string   `form:"long_description" binding:"required"`
	Variants         string   `form:"variants" binding:"required"`   // JSON 数组
	Categories       []string `form:"categories" binding:"required"` // 逗号分隔或重复字段
	Tags             []string `form:"tags" binding:"required"`
}

// VariantReq 变体，价格以分为单位
type VariantReq struct {
	Name          string `json:"name" validate:"max=100"`
	SKU           string `json:"sku" validate:"max=100"`
	OriginalPrice int64  `json:"original_price" validate:"required,gt=0"`
	SalePrice     *int64 `json:"sale_price" validate:"omitempty,gte=0"`
	Stock         int    `json:"stock" validate:"gte=0"`
}

// CreateProductInput 服务层创建商品入参，Images 为已上传的 URL
type CreateProductInput struct {
	Name             string       `validate:"required,max=255"`
	ShortDescription string       `validate:"max=512"`
	LongDescription  string       `validate:"required"`
	Images           []string     `validate:"required,min=1,dive,required"`
	Variants         []VariantReq `validate:"required,min=1,dive"`
	CategoryIDs      []int64      `validate:"required,min=1"`
	TagIDs           []int64      `validate:"required,min=1"`
}

// ListProductsQuery 列表查询参数
type ListProductsQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	Q        string `form:"q" binding:"max=100"`
	Category string `form:"category" binding:"max=100"`
}

// ==================== 响应 DTO ====================

// ProductResp 商品响应，店铺只带公开字段
type ProductResp struct {
	ID               int64                  `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription string                 `json:"short_description"`
	LongDescription  string                 `json:"long_description"`
	Images           []string               `json:"images"`
	Shop             *ShopBrief             `json:"shop,omitempty"`
	Variants         []model.ProductVariant `json:"variants"`
	Categories       []model.Category       `json:"categories"`
	Tags             []model.Tag            `json:"tags"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// ToProductResp 模型转响应
func ToProductResp(p *model.Product) ProductResp {
	resp := ProductResp{
		ID:               p.ID,
		Name:             p.Name,
		ShortDescription: p.ShortDescription,
		LongDescription:  p.LongDescription,
		Images:           []string(p.Images),
		Variants:         p.Variants,
		Categories:       p.Categories,
		Tags:             p.Tags,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	if resp.Variants == nil {
		resp.Variants = []model.ProductVariant{}
	}
	if resp.Categories == nil {
		resp.Categories = []model.Category{}
	}
	if resp.Tags == nil {
		resp.Tags = []model.Tag{}
	}
	if p.Shop != nil {
		resp.Shop = &ShopBrief{
			ID:       p.Shop.ID,
			Avatar:   p.Shop.Avatar,
			ShopName: p.Shop.ShopName,
			Email:    p.Shop.Email,
		}
	}
	return resp
}

// ToProductRespList 批量转换
func ToProductRespList(products []model.Product) []ProductResp {
	list := make([]ProductResp, 0, len(products))
	for i := range products {
		list = append(list, ToProductResp(&products[i]))
	}
	return list
}
