package app

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config описывает настройки запуска приложения. Значения читаются из
// переменных окружения с префиксом CRM_.
type Config struct {
	// HTTPAddr — адрес GraphQL API.
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	// MetricsAddr — адрес служебного HTTP: метрики и health checks.
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`
	// MongoURI включает Mongo-хранилище; пустое значение означает
	// in-memory хранилище для разработки и тестов.
	MongoURI      string `envconfig:"MONGO_URI"`
	MongoDatabase string `envconfig:"MONGO_DB" default:"crm"`
	// JWTSecret подписывает токены доступа. Обязателен.
	JWTSecret string `envconfig:"JWT_SECRET"`
	// TokenTTL — срок жизни токена доступа.
	TokenTTL        time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

// LoadConfig читает конфигурацию из окружения и валидирует обязательные поля.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("crm", &cfg); err != nil {
		return Config{}, fmt.Errorf("read config from environment: %w", err)
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("CRM_JWT_SECRET is required")
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("CRM_TOKEN_TTL must be positive")
	}
	return cfg, nil
}
