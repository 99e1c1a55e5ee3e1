package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"equipx_go/config"
	"equipx_go/middleware"
	"equipx_go/routes"
	"equipx_go/store"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	//设置环境
	env := os.Getenv("GIN_MODE")
	if env == "" {
		os.Setenv("GIN_MODE", "debug")
	}

	// 初始化日志系统
	if err := middleware.InitLogger(env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer middleware.FlushLogger()

	serverConfig := config.GetServerConfig()

	// 初始化Redis（可选：访问日志、token黑名单、限流）
	if serverConfig.RedisEnabled {
		if err := config.InitializeRedis(); err != nil {
			log.Printf("⚠️  Redis unavailable, continuing without it: %v", err)
		}
		defer config.CloseRedis()
	}

	// 初始化数据库（默认内存 SQLite，DB_DRIVER=mysql 时连接 MySQL）
	if err := config.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer config.CloseDatabase()

	st, err := store.New(config.DB)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}

	// 设置路由
	r := config.SetupRouter()

	// 注册自定义路由
	routes.SetupRoutes(r, st)

	srv := &http.Server{
		Addr:         ":" + serverConfig.Port,
		Handler:      r,
		ReadTimeout:  serverConfig.ReadTimeout,
		WriteTimeout: serverConfig.WriteTimeout,
	}

	go func() {
		middleware.InfoLogger("🚀 EquipX dev API listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		middleware.ErrorLogger("server shutdown failed", zap.Error(err))
	}
	middleware.InfoLogger("👋 server stopped")
}
