package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"equipx_go/config"
)

const revokedKeyPrefix = "equipx:revoked:"

// AuthMiddleware 校验 Bearer token，并把用户信息写入上下文
func AuthMiddleware(jwtService ...*config.JWTService) gin.HandlerFunc {
	svc := config.GetJWTService()
	if len(jwtService) > 0 && jwtService[0] != nil {
		svc = jwtService[0]
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 40100, "message": "missing authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 40100, "message": "invalid authorization format"})
			return
		}

		claims, err := svc.ValidateToken(parts[1])
		if err != nil {
			DebugLogger("token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 40100, "message": "invalid or expired token"})
			return
		}

		if IsTokenRevoked(c.Request.Context(), parts[1]) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 40100, "message": "token has been revoked"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_name", claims.Name)
		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)
		c.Set("token", parts[1])
		if claims.ExpiresAt != nil {
			c.Set("token_exp", claims.ExpiresAt.Time)
		}
		c.Next()
	}
}

// RevokeToken 登出时把 token 加入黑名单，直到其过期（Redis不可用时忽略）
func RevokeToken(ctx context.Context, token string, expiresAt time.Time) error {
	if config.RedisClient == nil {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return config.RedisClient.Set(ctx, revokedKey(token), 1, ttl).Err()
}

// IsTokenRevoked 检查黑名单；Redis出错时放行
func IsTokenRevoked(ctx context.Context, token string) bool {
	if config.RedisClient == nil {
		return false
	}
	n, err := config.RedisClient.Exists(ctx, revokedKey(token)).Result()
	if err != nil {
		DebugLogger("revocation check failed", zap.Error(err))
		return false
	}
	return n > 0
}

func revokedKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return revokedKeyPrefix + hex.EncodeToString(sum[:])
}
