package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "BOOKMANDU"

// Config 应用配置结构
type Config struct {
	Backend   BackendConfig   `mapstructure:"backend" json:"backend"`
	Session   SessionConfig   `mapstructure:"session" json:"session"`
	Log       LogConfig       `mapstructure:"log" json:"log"`
	Proxy     ProxyConfig     `mapstructure:"proxy" json:"proxy"`
	Mock      MockConfig      `mapstructure:"mock" json:"mock"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit" json:"ratelimit"`
}

// BackendConfig 后端服务配置
type BackendConfig struct {
	URL     string        `mapstructure:"url" json:"url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`
}

// SessionConfig 会话持久化配置
type SessionConfig struct {
	Store         string `mapstructure:"store" json:"store" validate:"oneof=sqlite redis memory"`
	Path          string `mapstructure:"path" json:"path"`
	RedisAddr     string `mapstructure:"redis_addr" json:"redis_addr"`
	RedisDB       int    `mapstructure:"redis_db" json:"redis_db"`
	RedisPassword string `mapstructure:"redis_password" json:"-"`
	RedisPrefix   string `mapstructure:"redis_prefix" json:"redis_prefix"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
	// File 非空时写入文件并按大小轮转
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// ProxyConfig 开发代理配置
type ProxyConfig struct {
	Port        string `mapstructure:"port" json:"port"`
	Target      string `mapstructure:"target" json:"target"`
	AllowOrigin string `mapstructure:"allow_origin" json:"allow_origin"`
}

// MockConfig 模拟后端配置
type MockConfig struct {
	Host      string        `mapstructure:"host" json:"host"`
	Port      string        `mapstructure:"port" json:"port"`
	JWTSecret string        `mapstructure:"jwt_secret" json:"-"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" json:"token_ttl"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled    bool   `mapstructure:"enabled" json:"enabled"`
	Type       string `mapstructure:"type" json:"type" validate:"oneof=redis memory"` // redis 或 memory
	RedisAddr  string `mapstructure:"redis_addr" json:"redis_addr"`
	RedisDB    int    `mapstructure:"redis_db" json:"redis_db"`
	Rate       int    `mapstructure:"rate" json:"rate"`             // 窗口内允许的请求数
	Expiration int    `mapstructure:"expiration" json:"expiration"` // 窗口时长（秒）
}

// Options 加载选项
type Options struct {
	// File 显式指定的配置文件，为空时按默认路径搜索
	File string
	// EnvFile .env 文件路径，为空时使用当前目录的 .env
	EnvFile string
	// Overrides 命令行参数覆盖，键为 viper 路径
	Overrides map[string]interface{}
}

// Load 加载配置文件
// 优先级：命令行参数 > 环境变量 > 配置文件 > 默认值
// 参数: opts 加载选项
// 返回值: *Config 配置对象, error 错误信息
func Load(opts Options) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".bookmandu"))
		}
	}

	setDefaults(v)

	// 读取环境变量
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// 兼容前端构建时使用的变量名
	if err := v.BindEnv("backend.url", EnvPrefix+"_BACKEND_URL", "REACT_APP_BACKEND_URL"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		// 如果配置文件不存在，使用默认值
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || opts.File != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Proxy.Target == "" {
		cfg.Proxy.Target = cfg.Backend.URL
	}
	cfg.Backend.URL = strings.TrimSuffix(cfg.Backend.URL, "/")

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.url", "http://localhost:5036")
	v.SetDefault("backend.timeout", 0)
	v.SetDefault("session.store", "sqlite")
	v.SetDefault("session.path", defaultSessionPath())
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.redis_db", 0)
	v.SetDefault("session.redis_prefix", "bookmandu:session:")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("proxy.port", "5173")
	v.SetDefault("proxy.target", "")
	v.SetDefault("proxy.allow_origin", "http://localhost:5173")
	v.SetDefault("mock.host", "127.0.0.1")
	v.SetDefault("mock.port", "5036")
	v.SetDefault("mock.jwt_secret", "bookmandu-dev-secret")
	v.SetDefault("mock.token_ttl", "1h")
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.type", "memory")
	v.SetDefault("ratelimit.redis_addr", "localhost:6379")
	v.SetDefault("ratelimit.rate", 100)
	v.SetDefault("ratelimit.expiration", 60)
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".bookmandu", "session.db")
	}
	return filepath.Join(home, ".bookmandu", "session.db")
}

// loadEnvFile 加载 .env，文件不存在时忽略；已存在的环境变量不会被覆盖
func loadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
