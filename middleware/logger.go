package middleware

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"equipx_go/config"
)

var (
	logger           = zap.NewNop()
	loggerMu         sync.RWMutex
	accessLogChannel chan *AccessLog
	workersOnce      sync.Once
)

// AccessLog 访问日志结构
type AccessLog struct {
	Time       time.Time `json:"time"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Query      string    `json:"query,omitempty"`
	IP         string    `json:"ip"`
	UserAgent  string    `json:"user_agent,omitempty"`
	StatusCode int       `json:"status_code"`
	Latency    int64     `json:"latency_ms"`
	UserID     string    `json:"user_id,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// InitLogger 初始化日志系统
func InitLogger(mode string) error {
	var zapConfig zap.Config

	if mode == "debug" || mode == "" {
		// 开发环境 - 控制台输出
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		// 生产环境 - JSON格式
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	built, err := zapConfig.Build()
	if err != nil {
		return err
	}
	SetLogger(built)
	return nil
}

// SetLogger 替换全局日志实例
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

// GetLogger 获取全局日志实例（未初始化时为空操作日志）
func GetLogger() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// startLogWorkers 启动日志处理worker
// 使用goroutine并发处理日志写入
func startLogWorkers() {
	accessLogChannel = make(chan *AccessLog, 1000)
	workerCount := 3 // 3个worker并发处理日志

	for i := 0; i < workerCount; i++ {
		go func(workerID int) {
			for accessLog := range accessLogChannel {
				accessLog.process()
			}
		}(i)
	}
}

// process 处理单条访问日志
func (al *AccessLog) process() {
	// 使用zap记录结构化日志
	GetLogger().Info("access_log",
		zap.String("time", al.Time.Format(time.RFC3339)),
		zap.String("method", al.Method),
		zap.String("path", al.Path),
		zap.String("query", al.Query),
		zap.String("ip", al.IP),
		zap.String("user_agent", al.UserAgent),
		zap.Int("status_code", al.StatusCode),
		zap.Int64("latency_ms", al.Latency),
		zap.String("user_id", al.UserID),
		zap.String("request_id", al.RequestID),
		zap.String("error", al.Error),
	)

	// 将日志写入Redis Stream（用于日志分析和监控）
	if config.RedisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		logData, _ := json.Marshal(al)

		config.RedisClient.XAdd(ctx, &redis.XAddArgs{
			Stream: "equipx:access_logs",
			MaxLen: 100000,
			Approx: true,
			Values: map[string]interface{}{
				"timestamp":   al.Time.Unix(),
				"method":      al.Method,
				"path":        al.Path,
				"status_code": al.StatusCode,
				"latency_ms":  al.Latency,
				"user_id":     al.UserID,
				"full_data":   string(logData),
			},
		})
	}
}

// Logger 返回日志中间件
func Logger() gin.HandlerFunc {
	workersOnce.Do(startLogWorkers)

	return func(c *gin.Context) {
		// 记录开始时间
		start := time.Now()

		// 生成请求ID
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		// 在响应头中添加请求ID
		c.Header("X-Request-ID", requestID)

		// 处理请求
		c.Next()

		// 构建访问日志
		accessLog := &AccessLog{
			Time:       start,
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			Query:      c.Request.URL.RawQuery,
			IP:         c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			StatusCode: c.Writer.Status(),
			Latency:    time.Since(start).Milliseconds(),
			UserID:     c.GetString("user_id"),
			RequestID:  requestID,
		}

		// 如果有错误，记录错误信息
		if len(c.Errors) > 0 {
			accessLog.Error = c.Errors.String()
		}

		// 将日志放入队列（异步处理）
		select {
		case accessLogChannel <- accessLog:
		default:
			// 队列满，直接丢弃（保证请求不被阻塞）
			log.Printf("Log channel is full, dropping log: %s %s", accessLog.Method, accessLog.Path)
		}
	}
}

// ErrorLogger 错误日志记录
func ErrorLogger(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// InfoLogger 信息日志记录
func InfoLogger(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// DebugLogger 调试日志记录
func DebugLogger(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// FlushLogger 刷新日志缓冲区
func FlushLogger() {
	_ = GetLogger().Sync()
}
