package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"shopfront_api_202610/internal/config"
	"shopfront_api_202610/internal/controller"
	"shopfront_api_202610/internal/middleware"
	"shopfront_api_202610/internal/repository"
	"shopfront_api_202610/internal/router"
	"shopfront_api_202610/internal/service"
	"shopfront_api_202610/internal/task"
)

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	UoW         *repository.UnitOfWork
	Tokens      *middleware.TokenIssuer
	Limiter     *middleware.CooldownLimiter
	Media       service.MediaStore
	Services    *Services
	Controllers *router.Controllers
	Tasks       *task.TaskManager

	// 本地存储目录，其它存储为空
	UploadDir string
}

// Services 服务集合
type Services struct {
	Verify  *service.VerificationService
	Shop    *service.ShopService
	Product *service.ProductService
	Catalog *service.CatalogService
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB, log *zerolog.Logger) (*Dependencies, error) {
	tokens, err := middleware.NewTokenIssuer(cfg.JWT)
	if err != nil {
		return nil, fmt.Errorf("初始化令牌签发器失败: %w", err)
	}

	media, err := service.NewMediaStore(cfg.Media)
	if err != nil {
		return nil, fmt.Errorf("初始化存储服务失败: %w", err)
	}

	deps := &Dependencies{
		DB:      db,
		UoW:     repository.NewUnitOfWork(db),
		Tokens:  tokens,
		Limiter: middleware.NewCooldownLimiter(),
		Media:   media,
	}
	if local, ok := media.(*service.LocalStorage); ok {
		deps.UploadDir = local.Dir()
	}

	// -------- 业务服务 --------
	hasher := service.NewBcryptHasher(0)
	sender := service.NewMailSender(cfg.SMTP, log)

	svc := &Services{}
	svc.Verify = service.NewVerificationService(deps.UoW, sender, hasher, tokens, deps.Limiter, cfg.Verify, log)
	svc.Shop = service.NewShopService(deps.UoW, svc.Verify, hasher, tokens, log)
	svc.Product = service.NewProductService(deps.UoW, media, cfg.Media.Folder, log)
	svc.Catalog = service.NewCatalogService(deps.UoW)
	deps.Services = svc

	// -------- Controller 层 --------
	deps.Controllers = &router.Controllers{
		Shop:    controller.NewShopController(svc.Shop, svc.Verify),
		Product: controller.NewProductController(svc.Product, cfg.Server.MaxUploadMB),
		Catalog: controller.NewCatalogController(svc.Catalog),
	}

	// -------- 定时任务 --------
	deps.Tasks = task.NewTaskManager(&task.TaskManagerDeps{
		Codes:   deps.UoW.Codes,
		Limiter: deps.Limiter,
	}, cfg.Task, cfg.Verify, log)

	return deps, nil
}
