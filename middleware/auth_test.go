package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipx_go/config"
)

func newAuthRouter(svc *config.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(svc), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":   c.GetString("user_id"),
			"user_role": c.GetString("user_role"),
		})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	svc := config.NewJWTService(&config.JWTConfig{SecretKey: "k", ExpirationTime: time.Hour, Issuer: "test"})
	r := newAuthRouter(svc)

	token, err := svc.GenerateToken("u1", "Ada", "ada@example.com", "seller")
	require.NoError(t, err)

	other := config.NewJWTService(&config.JWTConfig{SecretKey: "other", ExpirationTime: time.Hour, Issuer: "test"})
	forged, err := other.GenerateToken("u1", "Ada", "ada@example.com", "seller")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + token, http.StatusUnauthorized},
		{"forged signature", "Bearer " + forged, http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"user_id":"u1"`)
				assert.Contains(t, rec.Body.String(), `"user_role":"seller"`)
			} else {
				assert.Contains(t, rec.Body.String(), `"code":40100`)
			}
		})
	}
}

func TestCORSFromEnv(t *testing.T) {
	assert.Equal(t, GetDefaultCORSConfig().AllowOrigins, CORSFromEnv("").AllowOrigins)
	assert.Equal(t, []string{"https://equipx.app", "https://admin.equipx.app"},
		CORSFromEnv(" https://equipx.app, ,https://admin.equipx.app ").AllowOrigins)
}

func TestLoggerSetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logger())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
