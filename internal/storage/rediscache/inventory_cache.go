package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const defaultTTL = 15 * time.Minute

// InventoryCache кэширует внешнюю выдачу остатков магазина в Redis.
// Кэш best-effort: любая ошибка Redis трактуется как промах и логируется,
// чтение всегда может уйти в основное хранилище.
type InventoryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Entry
}

// NewInventoryCache создаёт Redis-кэш выдачи остатков.
// ttl <= 0 заменяется значением по умолчанию в 15 минут.
func NewInventoryCache(client *redis.Client, ttl time.Duration, logger *log.Entry) *InventoryCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &InventoryCache{
		client: client,
		ttl:    ttl,
		logger: logger.WithField("component", "inventory_cache"),
	}
}

var _ domain.InventoryViewCache = (*InventoryCache)(nil)

func (c *InventoryCache) Get(ctx context.Context, storeID int64) ([]domain.InventoryView, bool) {
	raw, err := c.client.Get(ctx, cacheKey(storeID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WithError(err).WithField("store_id", storeID).Warn("cache read failed")
		}
		return nil, false
	}

	var views []domain.InventoryView
	if err := json.Unmarshal(raw, &views); err != nil {
		c.logger.WithError(err).WithField("store_id", storeID).Warn("cache entry is corrupted")
		return nil, false
	}
	return views, true
}

func (c *InventoryCache) Set(ctx context.Context, storeID int64, rows []domain.InventoryView) {
	raw, err := json.Marshal(rows)
	if err != nil {
		c.logger.WithError(err).WithField("store_id", storeID).Warn("cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, cacheKey(storeID), raw, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("store_id", storeID).Warn("cache write failed")
	}
}

func cacheKey(storeID int64) string {
	return fmt.Sprintf("storefront:inventory:%d", storeID)
}
