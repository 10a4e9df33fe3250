package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// InventoryCache — процессный кэш выдачи остатков. Используется, когда
// Redis не сконфигурирован, и в тестах.
type InventoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[int64]inventoryCacheEntry
	now     func() time.Time
}

type inventoryCacheEntry struct {
	rows      []domain.InventoryView
	expiresAt time.Time
}

// NewInventoryCache создаёт кэш с заданным TTL.
// ttl <= 0 заменяется значением по умолчанию в 15 минут.
func NewInventoryCache(ttl time.Duration) *InventoryCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &InventoryCache{
		ttl:     ttl,
		entries: make(map[int64]inventoryCacheEntry),
		now:     time.Now,
	}
}

var _ domain.InventoryViewCache = (*InventoryCache)(nil)

func (c *InventoryCache) Get(_ context.Context, storeID int64) ([]domain.InventoryView, bool) {
	c.mu.RLock()
	entry, ok := c.entries[storeID]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}

	rows := make([]domain.InventoryView, len(entry.rows))
	copy(rows, entry.rows)
	return rows, true
}

func (c *InventoryCache) Set(_ context.Context, storeID int64, rows []domain.InventoryView) {
	stored := make([]domain.InventoryView, len(rows))
	copy(stored, rows)

	c.mu.Lock()
	c.entries[storeID] = inventoryCacheEntry{rows: stored, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}
