package app

import (
	"os"
	"strconv"
	"time"
)

// StorageDriver выбирает реализацию хранилища.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	RedisAddr         string
	InventoryCacheTTL time.Duration

	KafkaBrokers string

	// Предел ожидания строчной блокировки одной позиции.
	LockTimeout time.Duration

	NotifyQueueSize   int
	NotifyMaxAttempts int
}

// DefaultConfig возвращает конфигурацию для локального запуска
// без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		InventoryCacheTTL:   15 * time.Minute,
		LockTimeout:         5 * time.Second,
		NotifyQueueSize:     256,
		NotifyMaxAttempts:   3,
	}
}

// ConfigFromEnv строит конфигурацию из переменных окружения поверх
// значений по умолчанию. Непустой STOREFRONT_POSTGRES_DSN переключает
// хранилище на PostgreSQL.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("STOREFRONT_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("STOREFRONT_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("STOREFRONT_POSTGRES_DSN"); v != "" {
		cfg.StorageDriver = StorageDriverPostgres
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("STOREFRONT_POSTGRES_AUTO_MIGRATE"); v != "" {
		cfg.PostgresAutoMigrate = v == "true" || v == "1"
	}
	if v := os.Getenv("STOREFRONT_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("STOREFRONT_INVENTORY_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.InventoryCacheTTL = d
		}
	}
	if v := os.Getenv("STOREFRONT_KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = v
	}
	if v := os.Getenv("STOREFRONT_LOCK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.LockTimeout = d
		}
	}
	if v := os.Getenv("STOREFRONT_NOTIFY_QUEUE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.NotifyQueueSize = n
		}
	}
	if v := os.Getenv("STOREFRONT_NOTIFY_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.NotifyMaxAttempts = n
		}
	}

	return cfg
}
