package config

import (
	"fmt"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"

	// MemoryDSN 进程内 SQLite，每个连接池一个独立数据库
	MemoryDSN = ":memory:"
)

// DatabaseConfig 数据库配置结构
type DatabaseConfig struct {
	Driver   string // sqlite / mysql
	DSN      string // sqlite 文件路径或 :memory:
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	Charset  string
	LogLevel logger.LogLevel
}

// GetDatabaseConfig 从环境变量获取数据库配置
func GetDatabaseConfig() *DatabaseConfig {
	logLevel := logger.Silent
	if GetEnv("GIN_MODE", "release") == "debug" {
		logLevel = logger.Info
	}

	return &DatabaseConfig{
		Driver:   GetEnv("DB_DRIVER", DriverSQLite),
		DSN:      GetEnv("DB_DSN", MemoryDSN),
		Host:     GetEnv("DB_HOST", "localhost"),
		Port:     GetEnv("DB_PORT", "3306"),
		User:     GetEnv("DB_USER", "root"),
		Password: GetEnv("DB_PASSWORD", ""),
		DBName:   GetEnv("DB_NAME", "equipx"),
		Charset:  GetEnv("DB_CHARSET", "utf8mb4"),
		LogLevel: logLevel,
	}
}

// MemoryDatabaseConfig 内存 SQLite 配置（测试和本地开发）
func MemoryDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{Driver: DriverSQLite, DSN: MemoryDSN, LogLevel: logger.Silent}
}

// maskPassword 掩盖密码（只显示前2个字符）
func maskPassword(pwd string) string {
	if len(pwd) == 0 {
		return "(empty)"
	}
	if len(pwd) <= 2 {
		return "***"
	}
	return pwd[:2] + "***"
}

func (c *DatabaseConfig) dialector() (gorm.Dialector, error) {
	switch c.Driver {
	case DriverSQLite, "":
		dsn := c.DSN
		if dsn == "" {
			dsn = MemoryDSN
		}
		return sqlite.Open(dsn), nil
	case DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=UTC",
			c.User,
			c.Password,
			c.Host,
			c.Port,
			c.DBName,
			c.Charset,
		)
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}

// OpenDatabase 按配置打开数据库连接
func OpenDatabase(c *DatabaseConfig) (*gorm.DB, error) {
	dialector, err := c.dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(c.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 获取底层的sql.DB实例
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// 设置连接池参数
	if c.Driver == DriverMySQL {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// :memory: 数据库属于单个连接，且 SQLite 写入本就串行
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// InitDatabase 初始化全局数据库连接
func InitDatabase() error {
	c := GetDatabaseConfig()
	if c.Driver == DriverMySQL {
		log.Printf("📋 Database Config Loaded:\n  Host: %s\n  Port: %s\n  User: %s\n  DBName: %s\n  Password: %s\n",
			c.Host, c.Port, c.User, c.DBName, maskPassword(c.Password))
	} else {
		log.Printf("📋 Database Config Loaded: sqlite %s", c.DSN)
	}

	db, err := OpenDatabase(c)
	if err != nil {
		return err
	}
	DB = db

	log.Println("✅ Database connected successfully")
	return nil
}

// CloseDatabase 关闭数据库连接
func CloseDatabase() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
