package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"shopfront_api_202610/internal/api/dto"
	"shopfront_api_202610/internal/apperr"
	"shopfront_api_202610/internal/middleware"
	"shopfront_api_202610/internal/service"
)

const (
	defaultPageSize = 10
	maxImages       = 10
)

type ProductController struct {
	products      *service.ProductService
	maxImageBytes int64
}

// NewProductController maxUploadMB 为单张图片上限
func NewProductController(products *service.ProductService, maxUploadMB int64) *ProductController {
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}
	return &ProductController{
		products:      products,
		maxImageBytes: maxUploadMB << 20,
	}
}

// ==================== 创建 ====================

// CreateProduct 上传图片并创建商品
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var form dto.CreateProductForm
	if err := c.ShouldBind(&form); err != nil {
		respondBindError(c, err)
		return
	}

	var variants []dto.VariantReq
	if err := json.Unmarshal([]byte(form.Variants), &variants); err != nil {
		respondError(c, apperr.Validation("variants must be a JSON array"))
		return
	}

	categoryIDs, err := parseIDList(form.Categories)
	if err != nil {
		respondError(c, apperr.Validation("categories: "+err.Error()))
		return
	}
	tagIDs, err := parseIDList(form.Tags)
	if err != nil {
		respondError(c, apperr.Validation("tags: "+err.Error()))
		return
	}
	// 先于上传校验，避免产生需要回收的图片
	if len(categoryIDs) == 0 || len(tagIDs) == 0 {
		respondError(c, apperr.Validation("at least one category and one tag are required"))
		return
	}

	files, err := ctrl.readImages(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	urls, err := ctrl.products.UploadImages(ctx, files)
	if err != nil {
		respondError(c, err)
		return
	}

	product, err := ctrl.products.CreateProduct(ctx, middleware.GetShopID(c), &dto.CreateProductInput{
		Name:             form.Name,
		ShortDescription: form.ShortDescription,
		LongDescription:  form.LongDescription,
		Images:           urls,
		Variants:         variants,
		CategoryIDs:      categoryIDs,
		TagIDs:           tagIDs,
	})
	if err != nil {
		ctrl.products.DiscardImages(ctx, urls)
		respondError(c, err)
		return
	}

	created, err := ctrl.products.GetProduct(ctx, product.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "Product created successfully", dto.ToProductResp(created))
}

// ==================== 查询 ====================

// ListProducts 商品列表
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	var q dto.ListProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = defaultPageSize
	}

	products, total, err := ctrl.products.ListProducts(c.Request.Context(), &q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Code:       0,
		Message:    "success",
		Data:       dto.ToProductRespList(products),
		Pagination: dto.NewPagination(q.Page, q.PageSize, q.Q, q.Category, total),
	})
}

func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "success", dto.ToProductResp(product))
}

// ==================== 删除 ====================

func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.products.DeleteProduct(c.Request.Context(), id, middleware.GetShopID(c)); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Product deleted successfully", nil)
}

// ==================== 辅助函数 ====================

func (ctrl *ProductController) readImages(c *gin.Context) ([]service.ImageFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperr.Validation("request must be multipart/form-data")
	}

	headers := form.File["images"]
	if len(headers) == 0 {
		return nil, apperr.Validation("at least one image is required")
	}
	if len(headers) > maxImages {
		return nil, apperr.Validation(fmt.Sprintf("at most %d images are allowed", maxImages))
	}

	files := make([]service.ImageFile, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > ctrl.maxImageBytes {
			return nil, apperr.Validation(fmt.Sprintf("image %s exceeds %d MB", fh.Filename, ctrl.maxImageBytes>>20))
		}
		data, err := readFileHeader(fh)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		files = append(files, service.ImageFile{Filename: fh.Filename, Data: data})
	}
	return files, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// parseIDList 支持重复字段与逗号分隔两种写法
func parseIDList(values []string) ([]int64, error) {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("invalid id %q", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
