package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopfront_api_202610/internal/config"
	applog "shopfront_api_202610/internal/logger"
	"shopfront_api_202610/internal/middleware"
	"shopfront_api_202610/internal/model"
	"shopfront_api_202610/internal/repository"
	"shopfront_api_202610/internal/service"
)

// ==================== 测试辅助 ====================

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	sender *service.MockSender
	media  *service.MockMediaStore
	tokens *middleware.TokenIssuer
	hasher *service.BcryptHasher
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	tokens, err := middleware.NewTokenIssuer(config.JWTConfig{Secret: "ctl-secret", TokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("创建 TokenIssuer 失败: %v", err)
	}

	ctrl := gomock.NewController(t)
	env := &testEnv{
		db:     db,
		sender: service.NewMockSender(ctrl),
		media:  service.NewMockMediaStore(ctrl),
		tokens: tokens,
		hasher: service.NewBcryptHasher(bcrypt.MinCost),
	}

	log := applog.Nop()
	uow := repository.NewUnitOfWork(db)
	verifySvc := service.NewVerificationService(uow, env.sender, env.hasher, tokens,
		middleware.NewCooldownLimiter(), config.VerifyConfig{CodeTTL: time.Minute, CodeLength: 6}, log)
	shopSvc := service.NewShopService(uow, verifySvc, env.hasher, tokens, log)
	productSvc := service.NewProductService(uow, env.media, "products", log)
	catalogSvc := service.NewCatalogService(uow)

	shopCtl := NewShopController(shopSvc, verifySvc)
	productCtl := NewProductController(productSvc, 1)
	catalogCtl := NewCatalogController(catalogSvc)

	r := gin.New()
	r.Use(middleware.RequestLogger(log))
	api := r.Group("/api")
	auth := middleware.JWTAuth(tokens)

	shops := api.Group("/shops")
	shops.POST("/signup", shopCtl.Signup)
	shops.POST("/activate", shopCtl.Activate)
	shops.POST("/login", shopCtl.Login)
	shops.POST("/forgot-password", shopCtl.ForgotPassword)
	shops.POST("/reset-password", shopCtl.ResetPassword)
	shops.PUT("/password", auth, shopCtl.ChangePassword)
	shops.GET("/me", auth, shopCtl.Me)
	shops.PUT("/me", auth, shopCtl.UpdateMe)
	shops.GET("/:id", shopCtl.GetShop)

	api.GET("/categories", catalogCtl.ListCategories)
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	api.POST("/categories", auth, adminOnly, catalogCtl.CreateCategory)
	api.GET("/tags", catalogCtl.ListTags)
	api.POST("/tags", auth, adminOnly, catalogCtl.CreateTag)

	api.GET("/products", productCtl.ListProducts)
	api.GET("/products/:id", productCtl.GetProduct)
	api.POST("/products", auth, productCtl.CreateProduct)
	api.DELETE("/products/:id", auth, productCtl.DeleteProduct)

	env.router = r
	return env
}

func (env *testEnv) createShop(t *testing.T, email, phone string) (*model.Shop, string) {
	t.Helper()

	hashed, err := env.hasher.Hash("secret1")
	if err != nil {
		t.Fatalf("哈希密码失败: %v", err)
	}
	shop := &model.Shop{
		ShopName:    "shop-" + phone,
		Email:       email,
		PhoneNumber: phone,
		Password:    hashed,
		Role:        model.RoleShop,
		IsVerified:  true,
	}
	if err := env.db.Create(shop).Error; err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}

	token, err := env.tokens.Sign(shop.ID, shop.Email, shop.Role)
	if err != nil {
		t.Fatalf("签发令牌失败: %v", err)
	}
	return shop, token
}

func (env *testEnv) captureCode(to string) *string {
	var code string
	env.sender.EXPECT().
		Send(gomock.Any(), to, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, c string) error {
			code = c
			return nil
		})
	return &code
}

func (env *testEnv) doJSON(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

type multipartFile struct {
	name string
	data []byte
}

func (env *testEnv) doMultipart(path, token string, fields map[string][]string, files []multipartFile) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, values := range fields {
		for _, v := range values {
			_ = mw.WriteField(k, v)
		}
	}
	for _, f := range files {
		part, _ := mw.CreateFormFile("images", f.name)
		_, _ = part.Write(f.data)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// envelope 通用响应解析
type envelope struct {
	Code       int             `json:"code"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	Data       json.RawMessage `json:"data"`
	Pagination struct {
		Page     int   `json:"page"`
		PageSize int   `json:"pageSize"`
		LastPage int   `json:"lastPage"`
		Total    int64 `json:"total"`
	} `json:"pagination"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v, body=%s", err, w.Body.String())
	}
	return resp
}
