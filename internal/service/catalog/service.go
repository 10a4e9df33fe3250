package catalog

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	// Минимальная длина запроса автодополнения в рунах.
	minSuggestLen = 3
	// Максимум подсказок в одной выдаче.
	maxSuggestions = 10
)

// Service отвечает за читающие операции витрины: поиск по каталогу,
// автодополнение и выдачу остатков магазина с кэшированием.
type Service struct {
	catalog   domain.ProductCatalog
	stores    domain.StoreRepository
	inventory domain.InventoryReader
	cache     domain.InventoryViewCache
	logger    *log.Entry
}

// NewService создаёт сервис витрины. cache может быть nil — тогда
// выдача остатков всегда читается из хранилища.
func NewService(
	catalog domain.ProductCatalog,
	stores domain.StoreRepository,
	inventory domain.InventoryReader,
	cache domain.InventoryViewCache,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &Service{
		catalog:   catalog,
		stores:    stores,
		inventory: inventory,
		cache:     cache,
		logger:    logger,
	}
}

// Search выполняет поиск по каталогу.
func (s *Service) Search(ctx context.Context, query domain.ProductQuery) ([]domain.ProductHit, error) {
	query.Text = strings.TrimSpace(query.Text)
	query.Category = strings.TrimSpace(query.Category)

	hits, err := s.catalog.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	return hits, nil
}

// Suggest возвращает до 10 подсказок названий. Запросы короче трёх
// символов не обслуживаются: ErrQueryTooShort.
func (s *Service) Suggest(ctx context.Context, prefix string) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if utf8.RuneCountInString(prefix) < minSuggestLen {
		return nil, domain.ErrQueryTooShort
	}

	titles, err := s.catalog.SuggestTitles(ctx, prefix, maxSuggestions)
	if err != nil {
		return nil, fmt.Errorf("suggest titles: %w", err)
	}
	return titles, nil
}

// StoreInventory возвращает остатки магазина. Выдача кэшируется;
// попадание в кэш не проверяет существование магазина повторно.
func (s *Service) StoreInventory(ctx context.Context, storeID int64) ([]domain.InventoryView, error) {
	if s.cache != nil {
		if rows, ok := s.cache.Get(ctx, storeID); ok {
			return rows, nil
		}
	}

	if _, err := s.stores.Get(ctx, storeID); err != nil {
		return nil, err
	}

	rows, err := s.inventory.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("list store inventory: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, storeID, rows)
	}
	return rows, nil
}
