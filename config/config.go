package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig
	Graph    GraphConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Log      LogConfig
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Addr      string
	StaticDir string
}

// GraphConfig 航点图配置
type GraphConfig struct {
	MaxRange float64 // 最大航程 (km)
}

// DatabaseConfig 数据库配置 (只存用户)
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// AuthConfig 认证配置
type AuthConfig struct {
	Enabled       bool
	JWTSecret     string
	TokenTTL      time.Duration
	AdminPassword string // 非空时启动时创建 admin 用户
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text 或 json
	File   string // 非空时写入文件并自动轮转
}

// DSN 返回数据库连接字符串
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode,
	)
}

// Load 加载配置（从环境变量）
func Load() (*Config, error) {
	maxRange, err := getFloat("MAX_RANGE_KM", 7.5)
	if err != nil {
		return nil, err
	}
	if maxRange <= 0 {
		return nil, fmt.Errorf("MAX_RANGE_KM 必须大于 0: %v", maxRange)
	}
	dbEnabled, err := getBool("DB_ENABLED", false)
	if err != nil {
		return nil, err
	}
	authEnabled, err := getBool("AUTH_ENABLED", false)
	if err != nil {
		return nil, err
	}
	ttl, err := getDuration("JWT_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:      getEnv("SERVER_ADDR", ":8080"),
			StaticDir: getEnv("STATIC_DIR", "./static"),
		},
		Graph: GraphConfig{
			MaxRange: maxRange,
		},
		Database: DatabaseConfig{
			Enabled:  dbEnabled,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "uavuser"),
			Password: getEnv("DB_PASSWORD", "uavpassword"),
			DBName:   getEnv("DB_NAME", "uavplanner"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			Enabled:       authEnabled,
			JWTSecret:     getEnv("JWT_SECRET", ""),
			TokenTTL:      ttl,
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
			File:   getEnv("LOG_FILE", ""),
		},
	}

	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("AUTH_ENABLED=true 时必须设置 JWT_SECRET")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s 不是有效的数字: %w", key, err)
	}
	return f, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s 不是有效的布尔值: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s 不是有效的时长: %w", key, err)
	}
	return d, nil
}
