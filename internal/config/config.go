package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config 服务配置，启动时从环境变量解析一次，之后显式传递
type Config struct {
	Server ServerConfig `envPrefix:"SERVER_"`
	Log    LogConfig    `envPrefix:"LOG_"`
	DB     DBConfig     `envPrefix:"DB_"`
	JWT    JWTConfig    `envPrefix:"JWT_"`
	SMTP   SMTPConfig   `envPrefix:"SMTP_"`
	Media  MediaConfig  `envPrefix:"MEDIA_"`
	Verify VerifyConfig `envPrefix:"VERIFY_"`
	Task   TaskConfig   `envPrefix:"TASK_"`
}

type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	Mode            string        `env:"MODE" envDefault:"release"` // gin mode
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	MaxUploadMB     int64         `env:"MAX_UPLOAD_MB" envDefault:"20"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"` // json | console
}

type DBConfig struct {
	DSN          string        `env:"DSN" envDefault:"host=localhost user=shop password=shop dbname=shopfront port=5432 sslmode=disable"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"warn"` // silent | error | warn | info
	MaxIdleConns int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns int           `env:"MAX_OPEN_CONNS" envDefault:"100"`
	ConnMaxLife  time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`
}

// JWTConfig 签名密钥只在这里出现，由 TokenIssuer 构造时注入
type JWTConfig struct {
	Secret   string        `env:"SECRET"`
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	Issuer   string        `env:"ISSUER" envDefault:"shopfront"`
}

type SMTPConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM" envDefault:"no-reply@shopfront.local"`
}

type MediaConfig struct {
	Provider  string `env:"PROVIDER" envDefault:"cloudinary"` // cloudinary | s3 | local
	Folder    string `env:"FOLDER" envDefault:"products"`
	CloudName string `env:"CLOUD_NAME"`
	APIKey    string `env:"API_KEY"`
	APISecret string `env:"API_SECRET"`
	Bucket    string `env:"BUCKET"`
	Region    string `env:"REGION"`
	Endpoint  string `env:"ENDPOINT"`
	CDNDomain string `env:"CDN_DOMAIN"`
	BasePath  string `env:"BASE_PATH" envDefault:"./uploads"`
	BaseURL   string `env:"BASE_URL" envDefault:"http://localhost:8080/uploads"`
}

type VerifyConfig struct {
	CodeTTL        time.Duration `env:"CODE_TTL" envDefault:"15m"`
	CodeLength     int           `env:"CODE_LENGTH" envDefault:"6"`
	ResendInterval time.Duration `env:"RESEND_INTERVAL" envDefault:"60s"`
}

type TaskConfig struct {
	PurgeEnabled bool   `env:"PURGE_ENABLED" envDefault:"true"`
	PurgeSpec    string `env:"PURGE_SPEC" envDefault:"0 */10 * * * *"` // 秒级 cron
}

// Load 解析环境变量
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("解析环境变量失败: %w", err)
	}
	return &cfg, nil
}

// Validate 启动 serve 前的必填项检查
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET 未配置")
	}
	if c.JWT.TokenTTL <= 0 {
		return errors.New("JWT_TOKEN_TTL 必须大于 0")
	}
	if c.Verify.CodeTTL <= 0 {
		return errors.New("VERIFY_CODE_TTL 必须大于 0")
	}
	if c.Verify.CodeLength < 4 {
		return errors.New("VERIFY_CODE_LENGTH 至少为 4")
	}
	switch c.Media.Provider {
	case "cloudinary":
		if c.Media.CloudName == "" || c.Media.APIKey == "" || c.Media.APISecret == "" {
			return errors.New("cloudinary 需要 MEDIA_CLOUD_NAME / MEDIA_API_KEY / MEDIA_API_SECRET")
		}
	case "s3":
		if c.Media.Bucket == "" || c.Media.Region == "" {
			return errors.New("s3 需要 MEDIA_BUCKET / MEDIA_REGION")
		}
	case "local":
	default:
		return fmt.Errorf("不支持的存储提供者: %s", c.Media.Provider)
	}
	return nil
}
