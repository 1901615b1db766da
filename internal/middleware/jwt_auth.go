package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"shopfront_api_202610/internal/config"
)

// ==================== Claims 定义 ====================

// ShopClaims 令牌声明 {id, email, role}
type ShopClaims struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// ==================== TokenIssuer ====================

// TokenIssuer 签发与解析 Bearer Token
// 密钥与有效期在构造时注入，不读取进程环境
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenIssuer 创建签发器
func NewTokenIssuer(cfg config.JWTConfig) (*TokenIssuer, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

// Sign 签发令牌
func (i *TokenIssuer) Sign(id int64, email, role string) (string, error) {
	now := i.now()
	claims := &ShopClaims{
		ID:    id,
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse 解析并校验令牌
func (i *TokenIssuer) Parse(tokenString string) (*ShopClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ShopClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*ShopClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// TTL 令牌有效期
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// ==================== Gin 中间件 ====================

// Context Keys
const (
	ContextKeyShopID = "shop_id"
	ContextKeyEmail  = "email"
	ContextKeyRole   = "role"
	ContextKeyClaims = "claims"
)

// JWTAuth 认证中间件
func JWTAuth(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "you are unauthorized, login to continue")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "authorization header must be Bearer {token}")
			return
		}

		claims, err := issuer.Parse(parts[1])
		if err != nil {
			abortUnauthorized(c, "token is invalid or expired")
			return
		}

		c.Set(ContextKeyShopID, claims.ID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRole, claims.Role)
		c.Set(ContextKeyClaims, claims)

		c.Next()
	}
}

// RequireRole 角色校验
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"code":    http.StatusForbidden,
			"message": "You are not authorized to perform this action",
			"error":   "ForbiddenError",
		})
		c.Abort()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"code":    http.StatusUnauthorized,
		"message": message,
		"error":   "UnauthorizedError",
	})
	c.Abort()
}

// ==================== 辅助函数 ====================

// GetShopID 从 Context 获取店铺 ID
func GetShopID(c *gin.Context) int64 {
	if id, exists := c.Get(ContextKeyShopID); exists {
		return id.(int64)
	}
	return 0
}

// GetRole 从 Context 获取角色
func GetRole(c *gin.Context) string {
	if role, exists := c.Get(ContextKeyRole); exists {
		return role.(string)
	}
	return ""
}

// GetClaims 从 Context 获取完整 Claims
func GetClaims(c *gin.Context) *ShopClaims {
	if claims, exists := c.Get(ContextKeyClaims); exists {
		return claims.(*ShopClaims)
	}
	return nil
}
