package config

import (
	"os"
	"path/filepath"
	"time"
)

// DefaultPollInterval 聊天轮询间隔
const DefaultPollInterval = 5 * time.Second

// DefaultTokenKey token 持久化使用的键
const DefaultTokenKey = "equipx:token"

// ClientConfig 客户端配置
type ClientConfig struct {
	APIBaseURL   string
	PollInterval time.Duration
	// HTTPTimeout 为0时不设置超时，交给传输层
	HTTPTimeout time.Duration
	TokenStore  string // file, redis, memory
	TokenFile   string
	TokenKey    string
	LogMode     string
}

// GetClientConfig 从环境变量获取客户端配置
func GetClientConfig() *ClientConfig {
	pollInterval := GetEnvDuration("EQUIPX_POLL_INTERVAL", DefaultPollInterval)
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	return &ClientConfig{
		APIBaseURL:   GetEnv("EQUIPX_API_URL", "http://localhost:5500"),
		PollInterval: pollInterval,
		HTTPTimeout:  GetEnvDuration("EQUIPX_HTTP_TIMEOUT", 0),
		TokenStore:   GetEnv("EQUIPX_TOKEN_STORE", "file"),
		TokenFile:    GetEnv("EQUIPX_TOKEN_FILE", defaultTokenFile()),
		TokenKey:     GetEnv("EQUIPX_TOKEN_KEY", DefaultTokenKey),
		LogMode:      GetEnv("EQUIPX_LOG_MODE", "release"),
	}
}

// defaultTokenFile 默认 token 文件位置
func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "equipx", "credential.json")
}
