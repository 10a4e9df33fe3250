package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/service/notify"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
	"github.com/vladislavdragonenkov/storefront/internal/storage/rediscache"
)

// Dependencies содержит собранные зависимости приложения.
type Dependencies struct {
	Stores     domain.StoreRepository
	Catalog    domain.ProductCatalog
	Placements domain.PlacementStore
	Orders     domain.OrderRepository
	Inventory  domain.InventoryReader
	Cache      domain.InventoryViewCache
	Publisher  notify.Publisher

	pg          *postgres.Store
	redisClient *redis.Client
	producer    *kafka.Producer
	logger      *log.Entry
}

// NewDependencies собирает зависимости согласно конфигурации.
// Без DSN используется процессное хранилище, без брокеров Kafka
// подтверждения пишутся в лог.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	deps := &Dependencies{logger: logger}

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		pg, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := pg.EnsureSchema(ctx); err != nil {
				_ = pg.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
		}
		deps.pg = pg
		deps.Stores = postgres.NewStoreRepository(pg)
		deps.Catalog = postgres.NewProductCatalog(pg)
		deps.Placements = postgres.NewPlacementStore(pg, cfg.LockTimeout)
		deps.Orders = postgres.NewOrderRepository(pg)
		deps.Inventory = postgres.NewInventoryReader(pg)
		logger.Info("postgres storage initialized")
	default:
		db := memory.NewDB()
		deps.Stores = memory.NewStoreRepository(db)
		deps.Catalog = memory.NewProductCatalog(db)
		deps.Placements = memory.NewPlacementStore(db, cfg.LockTimeout)
		deps.Orders = memory.NewOrderRepository(db)
		deps.Inventory = memory.NewInventoryReader(db)
		logger.Info("in-memory storage initialized")
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis is unreachable, falling back to process cache")
			_ = client.Close()
		} else {
			deps.redisClient = client
			deps.Cache = rediscache.NewInventoryCache(client, cfg.InventoryCacheTTL, logger)
			logger.WithField("addr", cfg.RedisAddr).Info("redis cache initialized")
		}
	}
	if deps.Cache == nil {
		deps.Cache = memory.NewInventoryCache(cfg.InventoryCacheTTL)
	}

	if cfg.KafkaBrokers != "" {
		brokers := strings.Split(cfg.KafkaBrokers, ",")
		producer, err := kafka.NewProducer(brokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, confirmations go to log only")
		} else {
			deps.producer = producer
			deps.Publisher = kafka.NewConfirmationPublisher(producer, kafka.TopicOrderEvents)
			logger.WithField("brokers", brokers).Info("kafka producer initialized")
		}
	}
	if deps.Publisher == nil {
		deps.Publisher = notify.NewLogPublisher(logger)
	}

	return deps, nil
}

// Postgres возвращает подключение к PostgreSQL (nil для memory-хранилища).
func (d *Dependencies) Postgres() *postgres.Store {
	return d.pg
}

// Redis возвращает клиент Redis (nil, если кэш процессный).
func (d *Dependencies) Redis() *redis.Client {
	return d.redisClient
}

// Close освобождает внешние подключения.
func (d *Dependencies) Close() {
	if d.producer != nil {
		if err := d.producer.Close(); err != nil {
			d.logger.WithError(err).Warn("failed to close kafka producer")
		}
	}
	if d.redisClient != nil {
		if err := d.redisClient.Close(); err != nil {
			d.logger.WithError(err).Warn("failed to close redis client")
		}
	}
	if d.pg != nil {
		if err := d.pg.Close(); err != nil {
			d.logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
