package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 开发环境默认JWT密钥，release模式下禁止使用
const defaultJWTSecret = "your-secret-key-change-in-production"

// Config 全局配置结构
// 设计说明：使用Viper管理配置，支持YAML文件、.env文件与环境变量覆盖
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Log        LogConfig        `mapstructure:"log"`
	Stripe     StripeConfig     `mapstructure:"stripe"`
	Cloudinary CloudinaryConfig `mapstructure:"cloudinary"`
	Google     GoogleConfig     `mapstructure:"google"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	RabbitMQ   RabbitMQConfig   `mapstructure:"rabbitmq"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port          int           `mapstructure:"port"`
	Mode          string        `mapstructure:"mode"` // debug | release | test
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	SlowThreshold time.Duration `mapstructure:"slow_threshold"` // 慢请求告警阈值
}

// Addr 监听地址
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type AppConfig struct {
	BaseURL string `mapstructure:"base_url"` // 支付回跳地址与相对封面图的基准
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // mysql | memory
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Instrument      bool          `mapstructure:"instrument"` // 使用otelsql记录SQL span
}

// DSN 生成MySQL连接字符串
// 格式：user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Local
// 注意：loc参数需要URL编码（Asia/Shanghai → Asia%2FShanghai）
func (d DatabaseConfig) DSN() string {
	loc := url.QueryEscape(d.Loc)
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, d.ParseTime, loc)
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"` // false时会话存储使用进程内实现
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpire  time.Duration `mapstructure:"access_token_expire"`
	RefreshTokenExpire time.Duration `mapstructure:"refresh_token_expire"`
	CookieSecure       bool          `mapstructure:"cookie_secure"`
}

type LogConfig struct {
	Level     string `mapstructure:"level"`  // debug | info | warn | error
	Format    string `mapstructure:"format"` // text | json
	Output    string `mapstructure:"output"` // stdout | stderr | /path/to/file
	AddSource bool   `mapstructure:"add_source"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	Currency      string `mapstructure:"currency"`
}

type CloudinaryConfig struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Folder    string `mapstructure:"folder"`
}

// Configured 三项凭据齐全
func (c CloudinaryConfig) Configured() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// Configured 是否启用Google登录
func (g GoogleConfig) Configured() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

type CatalogConfig struct {
	OpenLibraryURL string        `mapstructure:"open_library_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Enabled        bool          `mapstructure:"enabled"`
}

type RabbitMQConfig struct {
	URL      string `mapstructure:"url"` // 为空时不发布领域事件
	Exchange string `mapstructure:"exchange"`
}

type TracingConfig struct {
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"` // OTLP gRPC地址，为空时不导出
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// Load 加载配置
// 支持：
// 1. 可选的.env文件（先于viper加载，只补充未设置的环境变量）
// 2. config/config.yaml，可通过BOOKMARKET_ENV指定环境（如config.prod.yaml）；文件不存在时使用默认值
// 3. 环境变量覆盖（如BOOKMARKET_DATABASE_PASSWORD → database.password）
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.SetConfigName("config")
	if env := os.Getenv("BOOKMARKET_ENV"); env != "" {
		v.SetConfigName("config." + env)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	v.SetEnvPrefix("BOOKMARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg.App.BaseURL = strings.TrimRight(cfg.App.BaseURL, "/")

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// 环境变量覆盖只对已知key生效，因此所有key都需要默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.slow_threshold", time.Second)

	v.SetDefault("app.base_url", "http://localhost:3000")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "bookmarket")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.loc", "Local")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.instrument", false)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.min_idle_conns", 5)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.access_token_expire", 2*time.Hour)
	v.SetDefault("jwt.refresh_token_expire", 7*24*time.Hour)
	v.SetDefault("jwt.cookie_secure", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.add_source", false)

	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.webhook_secret", "")
	v.SetDefault("stripe.currency", "usd")

	v.SetDefault("cloudinary.cloud_name", "")
	v.SetDefault("cloudinary.api_key", "")
	v.SetDefault("cloudinary.api_secret", "")
	v.SetDefault("cloudinary.folder", "booktreasure")

	v.SetDefault("google.client_id", "")
	v.SetDefault("google.client_secret", "")
	v.SetDefault("google.redirect_url", "http://localhost:8080/api/v1/auth/google/callback")

	v.SetDefault("catalog.open_library_url", "https://openlibrary.org")
	v.SetDefault("catalog.timeout", 5*time.Second)
	v.SetDefault("catalog.enabled", true)

	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "bookmarket.events")

	v.SetDefault("tracing.service_name", "bookmarket-api")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// validate 配置校验
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", cfg.Server.Port)
	}

	switch cfg.Database.Driver {
	case "mysql", "memory":
	default:
		return fmt.Errorf("无效的数据库驱动: %s", cfg.Database.Driver)
	}

	if _, err := url.ParseRequestURI(cfg.App.BaseURL); err != nil {
		return fmt.Errorf("无效的app.base_url: %s", cfg.App.BaseURL)
	}

	if cfg.Server.Mode == "release" {
		if cfg.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("生产环境必须修改JWT密钥")
		}
		if cfg.Stripe.SecretKey == "" || cfg.Stripe.WebhookSecret == "" {
			return fmt.Errorf("生产环境必须配置Stripe密钥与webhook密钥")
		}
	}

	return nil
}
