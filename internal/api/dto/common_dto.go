package dto

// ==================== 通用响应 ====================

// Response 统一响应包
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse 错误响应包，error 为错误类别
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// ==================== 分页 ====================

// Pagination 列表分页信息，total 为匹配总数
type Pagination struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Q        string `json:"q"`
	Category string `json:"category"`
	LastPage int    `json:"lastPage"`
	Total    int64  `json:"total"`
}

// NewPagination 计算末页，无数据时末页为 1
func NewPagination(page, pageSize int, q, category string, total int64) Pagination {
	lastPage := 1
	if pageSize > 0 && total > 0 {
		lastPage = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Pagination{
		Page:     page,
		PageSize: pageSize,
		Q:        q,
		Category: category,
		LastPage: lastPage,
		Total:    total,
	}
}

// ListResponse 带分页的列表响应
type ListResponse struct {
	Code       int         `json:"code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}
