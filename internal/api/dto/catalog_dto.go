package dto

// CreateCatalogItemRequest 新建分类或标签
type CreateCatalogItemRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}
