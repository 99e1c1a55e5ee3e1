package config

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// ServerConfig 开发API服务器配置结构
type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RedisEnabled bool // Redis是否启用
}

// GetServerConfig 获取服务器配置
func GetServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:         GetEnv("SERVER_PORT", "5500"),
		Mode:         GetEnv("GIN_MODE", "debug"),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		RedisEnabled: GetEnvBool("REDIS_ENABLED", false),
	}
}

// SetupRouter 设置路由
func SetupRouter() *gin.Engine {
	serverConfig := GetServerConfig()

	// 根据环境设置Gin模式
	gin.SetMode(serverConfig.Mode)

	// 创建Gin实例
	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery()) // 恢复panic

	// 健康检查端点（包括Redis状态）
	r.GET("/health", func(c *gin.Context) {
		health := gin.H{
			"status":  "ok",
			"message": "Server is running",
		}

		// 检查Redis状态
		if RedisClient != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := RedisClient.Ping(ctx).Err(); err == nil {
				health["redis"] = "connected"
			} else {
				health["redis"] = "disconnected"
			}
		} else {
			health["redis"] = "not initialized"
		}

		c.JSON(200, health)
	})

	return r
}
