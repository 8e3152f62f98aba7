package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Security  SecurityConfig
	Digiflazz DigiflazzConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
	// Storage is "postgres" or "memory".
	Storage     string
	CORSOrigins []string
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	// Only enable behind a proxy that overwrites those headers.
	TrustProxy bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
	SSLMode  string
}

type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type SecurityConfig struct {
	BcryptCost   int
	CookieSecure bool
}

type DigiflazzConfig struct {
	Username      string
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	Testing       bool
	WebhookSecret string
	// FailOnError marks a PENDING order FAILED when the provider call errors.
	FailOnError bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// LoadConfig reads the .env file in dir (optional) and the process environment.
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, ".env"))
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "ppob-backend")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("STORAGE", "postgres")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("JWT_EXPIRES_IN", "15m")
	v.SetDefault("REFRESH_TOKEN_EXPIRES_DAYS", 30)
	v.SetDefault("BCRYPT_SALT_ROUNDS", 10)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("DIGIFLAZZ_BASE_URL", "https://api.digiflazz.com")
	v.SetDefault("DIGIFLAZZ_TIMEOUT", "30s")
	v.SetDefault("DIGIFLAZZ_TESTING", false)
	v.SetDefault("ORDER_FAIL_ON_PROVIDER_ERROR", true)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("KAFKA_TOPIC", "ppob.transaction.updated")
	v.SetDefault("AUTH_RATE_LIMIT_RPS", 1)
	v.SetDefault("AUTH_RATE_LIMIT_BURST", 5)

	// .env boleh tidak ada, environment variable tetap dipakai
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:        v.GetString("APP_NAME"),
			Port:        v.GetString("PORT"),
			Debug:       v.GetBool("DEBUG"),
			LogPath:     v.GetString("LOG_PATH"),
			Storage:     strings.ToLower(v.GetString("STORAGE")),
			CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
			TrustProxy:  v.GetBool("TRUST_PROXY"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			AccessTTL:  v.GetDuration("JWT_EXPIRES_IN"),
			RefreshTTL: time.Duration(v.GetInt("REFRESH_TOKEN_EXPIRES_DAYS")) * 24 * time.Hour,
		},
		Security: SecurityConfig{
			BcryptCost:   v.GetInt("BCRYPT_SALT_ROUNDS"),
			CookieSecure: v.GetBool("COOKIE_SECURE"),
		},
		Digiflazz: DigiflazzConfig{
			Username:      v.GetString("DIGIFLAZZ_USERNAME"),
			APIKey:        v.GetString("DIGIFLAZZ_API_KEY"),
			BaseURL:       v.GetString("DIGIFLAZZ_BASE_URL"),
			Timeout:       v.GetDuration("DIGIFLAZZ_TIMEOUT"),
			Testing:       v.GetBool("DIGIFLAZZ_TESTING"),
			WebhookSecret: v.GetString("DIGIFLAZZ_WEBHOOK_SECRET"),
			FailOnError:   v.GetBool("ORDER_FAIL_ON_PROVIDER_ERROR"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("AUTH_RATE_LIMIT_RPS"),
			Burst: v.GetInt("AUTH_RATE_LIMIT_BURST"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("REFRESH_TOKEN_EXPIRES_DAYS must be positive")
	}
	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_SALT_ROUNDS must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.App.Storage != "postgres" && c.App.Storage != "memory" {
		return fmt.Errorf("unknown STORAGE %q", c.App.Storage)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
