package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"gorm.io/datatypes"

	"shopfront_api_202610/internal/api/dto"
	"shopfront_api_202610/internal/apperr"
	"shopfront_api_202610/internal/model"
	"shopfront_api_202610/internal/repository"
	"shopfront_api_202610/pkg/utils"
)

const maxConcurrentUploads = 4

// ImageFile 待上传的图片
type ImageFile struct {
	Filename string
	Data     []byte
}

// ==================== ProductService 商品服务 ====================

type ProductService struct {
	uow      *repository.UnitOfWork
	media    MediaStore
	folder   string
	validate *validator.Validate
	log      *zerolog.Logger
}

func NewProductService(uow *repository.UnitOfWork, media MediaStore, folder string, log *zerolog.Logger) *ProductService {
	if folder == "" {
		folder = "products"
	}
	return &ProductService{
		uow:      uow,
		media:    media,
		folder:   folder,
		validate: validator.New(),
		log:      log,
	}
}

// ==================== 图片上传 ====================

// UploadImages 并发上传，任一失败则删除已上传的图片
// 返回的 URL 顺序与入参一致
func (s *ProductService) UploadImages(ctx context.Context, files []ImageFile) ([]string, error) {
	if len(files) == 0 {
		return nil, apperr.Validation("at least one image is required")
	}
	for _, f := range files {
		if len(f.Data) == 0 {
			return nil, apperr.Validation(fmt.Sprintf("image %s is empty", f.Filename))
		}
		if ct := utils.DetectImageType(f.Data, f.Filename); !utils.IsAllowedImage(ct) {
			return nil, apperr.Validation(fmt.Sprintf("image %s has unsupported type %s", f.Filename, ct))
		}
	}

	results := make([]*UploadResult, len(files))
	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(maxConcurrentUploads)
	for i, f := range files {
		p.Go(func(ctx context.Context) error {
			res, err := s.media.Upload(ctx, f.Data, f.Filename, s.folder)
			if err != nil {
				return fmt.Errorf("upload %s: %w", f.Filename, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		s.discardUploads(ctx, results)
		return nil, apperr.Operation("Failed to upload images", http.StatusInternalServerError, err)
	}

	urls := make([]string, len(results))
	for i, res := range results {
		urls[i] = res.URL
	}
	return urls, nil
}

// DiscardImages 删除已上传但未能落库的图片
func (s *ProductService) DiscardImages(ctx context.Context, urls []string) {
	results := make([]*UploadResult, 0, len(urls))
	for _, u := range urls {
		if id, ok := s.media.PublicIDFromURL(u); ok {
			results = append(results, &UploadResult{URL: u, PublicID: id})
		}
	}
	s.discardUploads(ctx, results)
}

func (s *ProductService) discardUploads(ctx context.Context, results []*UploadResult) {
	// 请求可能已取消，清理不受其影响
	ctx = context.WithoutCancel(ctx)
	for _, res := range results {
		if res == nil {
			continue
		}
		if err := s.media.Delete(ctx, res.PublicID); err != nil {
			s.log.Warn().Err(err).Str("public_id", res.PublicID).Msg("failed to discard uploaded image")
		}
	}
}

// ==================== 创建 ====================

// CreateProduct 单事务写入商品、分类/标签关联与变体
// 分类与标签至少各一个，未知的 ID 直接忽略
func (s *ProductService) CreateProduct(ctx context.Context, shopID int64, in *dto.CreateProductInput) (*model.Product, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.Validation(validationMessage(err))
	}

	product := &model.Product{
		ShopID:           shopID,
		Name:             in.Name,
		ShortDescription: in.ShortDescription,
		LongDescription:  in.LongDescription,
		Images:           datatypes.JSONSlice[string](in.Images),
	}

	err := s.uow.Transaction(ctx, func(tx *repository.UnitOfWork) error {
		categories, err := tx.Catalog.FindCategoriesByIDs(ctx, in.CategoryIDs)
		if err != nil {
			return err
		}
		tags, err := tx.Catalog.FindTagsByIDs(ctx, in.TagIDs)
		if err != nil {
			return err
		}
		product.Categories = categories
		product.Tags = tags

		if err := tx.Products.Create(ctx, product); err != nil {
			return err
		}

		variants := make([]model.ProductVariant, 0, len(in.Variants))
		for _, v := range in.Variants {
			variants = append(variants, model.ProductVariant{
				ProductID:     product.ID,
				Name:          v.Name,
				SKU:           v.SKU,
				OriginalPrice: v.OriginalPrice,
				SalePrice:     v.SalePrice,
				Stock:         v.Stock,
			})
		}
		if err := tx.Products.CreateVariants(ctx, variants); err != nil {
			return fmt.Errorf("create variants: %w", err)
		}
		product.Variants = variants
		return nil
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.Info().
		Int64("shop_id", shopID).
		Int64("product_id", product.ID).
		Int("variants", len(product.Variants)).
		Msg("product created")
	return product, nil
}

// ==================== 查询 ====================

// GetProduct 商品详情（变体、店铺公开字段、分类、标签）
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.uow.Products.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if product == nil {
		return nil, apperr.NotFound("Product not found")
	}
	return product, nil
}

// ListProducts 按创建时间倒序分页
func (s *ProductService) ListProducts(ctx context.Context, q *dto.ListProductsQuery) ([]model.Product, int64, error) {
	products, total, err := s.uow.Products.List(ctx, repository.ProductFilter{
		Keyword:  q.Q,
		Category: q.Category,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return products, total, nil
}

// ==================== 删除 ====================

// DeleteProduct 先删变体再删商品，提交后删除媒体存储中的图片
// 图片 URL 无法解析时不做任何删除
func (s *ProductService) DeleteProduct(ctx context.Context, id, requesterID int64) error {
	product, err := s.uow.Products.GetByID(ctx, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if product == nil {
		return apperr.NotFound("Product not found")
	}
	if product.ShopID != requesterID {
		return apperr.Forbidden("You are not authorized to perform this action")
	}

	publicIDs := make([]string, 0, len(product.Images))
	for _, u := range product.Images {
		publicID, ok := s.media.PublicIDFromURL(u)
		if !ok {
			return apperr.Operation("Something went wrong with deleting image", http.StatusBadRequest, nil)
		}
		publicIDs = append(publicIDs, publicID)
	}

	err = s.uow.Transaction(ctx, func(tx *repository.UnitOfWork) error {
		if _, err := tx.Products.DeleteVariantsByProductID(ctx, product.ID); err != nil {
			return err
		}
		return tx.Products.Delete(ctx, product)
	})
	if err != nil {
		return apperr.Internal(err)
	}

	for _, publicID := range publicIDs {
		if err := s.media.Delete(ctx, publicID); err != nil {
			return apperr.Operation("Failed to delete image", http.StatusInternalServerError, err)
		}
	}

	s.log.Info().Int64("product_id", product.ID).Int("images", len(publicIDs)).Msg("product deleted")
	return nil
}

// validationMessage 取第一条校验错误
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("%s failed on the '%s' rule", fe.Namespace(), fe.Tag())
	}
	return err.Error()
}
