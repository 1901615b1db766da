package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront_api_202610/internal/config"
)

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(config.JWTConfig{Secret: "test-secret", TokenTTL: 24 * time.Hour, Issuer: "test"})
	require.NoError(t, err)
	return issuer
}

func TestNewTokenIssuer_EmptySecret(t *testing.T) {
	_, err := NewTokenIssuer(config.JWTConfig{})
	assert.Error(t, err)
}

func TestTokenIssuer_SignAndParse(t *testing.T) {
	issuer := newTestIssuer(t)

	token, err := issuer.Sign(7, "a@shop.test", "shop")
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.ID)
	assert.Equal(t, "a@shop.test", claims.Email)
	assert.Equal(t, "shop", claims.Role)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenIssuer_RejectsOtherSecretAndExpired(t *testing.T) {
	issuer := newTestIssuer(t)
	other, err := NewTokenIssuer(config.JWTConfig{Secret: "other", TokenTTL: time.Hour})
	require.NoError(t, err)

	token, err := other.Sign(1, "a@shop.test", "shop")
	require.NoError(t, err)
	_, err = issuer.Parse(token)
	assert.Error(t, err)

	token, err = issuer.Sign(1, "a@shop.test", "shop")
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	_, err = issuer.Parse(token)
	assert.Error(t, err)
}

func TestJWTAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := newTestIssuer(t)

	r := gin.New()
	r.GET("/me", JWTAuth(issuer), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"shop_id": GetShopID(c), "role": GetRole(c)})
	})

	token, err := issuer.Sign(42, "a@shop.test", "shop")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"无认证头", "", http.StatusUnauthorized},
		{"格式错误", "Token " + token, http.StatusUnauthorized},
		{"无效 token", "Bearer not-a-token", http.StatusUnauthorized},
		{"正常", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := newTestIssuer(t)

	r := gin.New()
	r.POST("/categories", JWTAuth(issuer), RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	shopToken, _ := issuer.Sign(1, "a@shop.test", "shop")
	adminToken, _ := issuer.Sign(2, "admin@shop.test", "admin")

	req := httptest.NewRequest(http.MethodPost, "/categories", nil)
	req.Header.Set("Authorization", "Bearer "+shopToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/categories", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}
