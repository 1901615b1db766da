package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"shopfront_api_202610/internal/controller"
	"shopfront_api_202610/internal/middleware"
	"shopfront_api_202610/internal/model"
	"shopfront_api_202610/pkg/database"
)

// Controllers 控制器集合
type Controllers struct {
	Shop    *controller.ShopController
	Product *controller.ProductController
	Catalog *controller.CatalogController
}

// Options 路由依赖
type Options struct {
	DB     *gorm.DB
	Tokens *middleware.TokenIssuer
	Log    *zerolog.Logger

	// 本地存储时挂载静态目录，为空则不挂载
	UploadDir string
}

// SetupRouter 创建 gin 引擎并注册所有路由
func SetupRouter(ctl *Controllers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(opts.Log))

	r.GET("/healthz", healthz(opts.DB))
	if opts.UploadDir != "" {
		r.Static("/uploads", opts.UploadDir)
	}

	InitRoutes(r, ctl, middleware.JWTAuth(opts.Tokens))
	return r
}

// InitRoutes 注册业务路由
func InitRoutes(r *gin.Engine, ctl *Controllers, auth gin.HandlerFunc) {
	api := r.Group("/api")
	{
		// shop 账号与资料
		shops := api.Group("/shops")
		{
			shops.POST("/signup", ctl.Shop.Signup)
			shops.POST("/activate", ctl.Shop.Activate)
			shops.POST("/login", ctl.Shop.Login)
			shops.POST("/forgot-password", ctl.Shop.ForgotPassword)
			shops.POST("/reset-password", ctl.Shop.ResetPassword)

			shops.PUT("/password", auth, ctl.Shop.ChangePassword)
			shops.GET("/me", auth, ctl.Shop.Me)
			shops.PUT("/me", auth, ctl.Shop.UpdateMe)

			// GET /api/shops/:id 公开资料
			shops.GET("/:id", ctl.Shop.GetShop)
		}

		// 分类与标签，写操作仅限管理员
		adminOnly := middleware.RequireRole(model.RoleAdmin)
		api.GET("/categories", ctl.Catalog.ListCategories)
		api.POST("/categories", auth, adminOnly, ctl.Catalog.CreateCategory)
		api.GET("/tags", ctl.Catalog.ListTags)
		api.POST("/tags", auth, adminOnly, ctl.Catalog.CreateTag)

		// product 组
		products := api.Group("/products")
		{
			products.GET("", ctl.Product.ListProducts)
			products.GET("/:id", ctl.Product.GetProduct)
			products.POST("", auth, ctl.Product.CreateProduct)
			products.DELETE("/:id", auth, ctl.Product.DeleteProduct)
		}
	}
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.Ping(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
