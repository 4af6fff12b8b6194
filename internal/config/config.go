package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	S3        S3Config
	Log       LogConfig
	Voice     VoiceConfig
	CORS      CORSConfig
	Email     EmailConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds the correction-store connection settings. An empty Addr
// selects the in-memory store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings for invoice archival.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// VoiceConfig holds remote intent-parser settings. An empty endpoint disables
// remote parsing entirely; the local cascade still runs.
type VoiceConfig struct {
	RemoteEndpoint string `mapstructure:"remote_endpoint"`
	RemoteAPIKey   string `mapstructure:"remote_api_key"`
	TimeoutSecs    int    `mapstructure:"timeout_secs"`
	Locale         string `mapstructure:"locale"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// RateLimitConfig bounds the voice endpoints, which fan out to the remote
// parser.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// Load reads configuration from environment variables with the BILLVOX_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BILLVOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "billvox")
	v.SetDefault("db.password", "billvox_secret")
	v.SetDefault("db.name", "billvox_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Redis defaults (empty addr = in-memory correction store)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "billvox")

	// S3 defaults
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "billvox-invoices")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Voice defaults
	v.SetDefault("voice.remote_endpoint", "")
	v.SetDefault("voice.remote_api_key", "")
	v.SetDefault("voice.timeout_secs", 5)
	v.SetDefault("voice.locale", "en-IN")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-south-1")
	v.SetDefault("email.from_address", "billing@billvox.in")
	v.SetDefault("email.from_name", "BillVox")

	// Rate limit defaults
	v.SetDefault("rate_limit.requests_per_second", 5.0)
	v.SetDefault("rate_limit.burst", 10)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                    "BILLVOX_SERVER_PORT",
		"server.read_timeout":            "BILLVOX_SERVER_READ_TIMEOUT",
		"server.write_timeout":           "BILLVOX_SERVER_WRITE_TIMEOUT",
		"server.environment":             "BILLVOX_SERVER_ENVIRONMENT",
		"db.host":                        "BILLVOX_DB_HOST",
		"db.port":                        "BILLVOX_DB_PORT",
		"db.user":                        "BILLVOX_DB_USER",
		"db.password":                    "BILLVOX_DB_PASSWORD",
		"db.name":                        "BILLVOX_DB_NAME",
		"db.sslmode":                     "BILLVOX_DB_SSLMODE",
		"db.max_open":                    "BILLVOX_DB_MAX_OPEN",
		"db.max_idle":                    "BILLVOX_DB_MAX_IDLE",
		"redis.addr":                     "BILLVOX_REDIS_ADDR",
		"redis.password":                 "BILLVOX_REDIS_PASSWORD",
		"redis.db":                       "BILLVOX_REDIS_DB",
		"jwt.secret":                     "BILLVOX_JWT_SECRET",
		"jwt.access_expiry":              "BILLVOX_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":             "BILLVOX_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                     "BILLVOX_JWT_ISSUER",
		"s3.region":                      "BILLVOX_S3_REGION",
		"s3.bucket":                      "BILLVOX_S3_BUCKET",
		"s3.endpoint":                    "BILLVOX_S3_ENDPOINT",
		"s3.access_key":                  "BILLVOX_S3_ACCESS_KEY",
		"s3.secret_key":                  "BILLVOX_S3_SECRET_KEY",
		"s3.presign_expiry":              "BILLVOX_S3_PRESIGN_EXPIRY",
		"log.level":                      "BILLVOX_LOG_LEVEL",
		"log.format":                     "BILLVOX_LOG_FORMAT",
		"voice.remote_endpoint":          "BILLVOX_VOICE_REMOTE_ENDPOINT",
		"voice.remote_api_key":           "BILLVOX_VOICE_REMOTE_API_KEY",
		"voice.timeout_secs":             "BILLVOX_VOICE_TIMEOUT_SECS",
		"voice.locale":                   "BILLVOX_VOICE_LOCALE",
		"cors.allowed_origins":           "BILLVOX_CORS_ALLOWED_ORIGINS",
		"email.provider":                 "BILLVOX_EMAIL_PROVIDER",
		"email.region":                   "BILLVOX_EMAIL_REGION",
		"email.from_address":             "BILLVOX_EMAIL_FROM_ADDRESS",
		"email.from_name":                "BILLVOX_EMAIL_FROM_NAME",
		"rate_limit.requests_per_second": "BILLVOX_RATE_LIMIT_REQUESTS_PER_SECOND",
		"rate_limit.burst":               "BILLVOX_RATE_LIMIT_BURST",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if BILLVOX_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BILLVOX_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Redis = RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Voice = VoiceConfig{
		RemoteEndpoint: v.GetString("voice.remote_endpoint"),
		RemoteAPIKey:   v.GetString("voice.remote_api_key"),
		TimeoutSecs:    v.GetInt("voice.timeout_secs"),
		Locale:         v.GetString("voice.locale"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}
	cfg.RateLimit = RateLimitConfig{
		RequestsPerSecond: v.GetFloat64("rate_limit.requests_per_second"),
		Burst:             v.GetInt("rate_limit.burst"),
	}

	return cfg, nil
}
