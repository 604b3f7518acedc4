package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/tickerpress/internal/common"
	"github.com/bobmcallan/tickerpress/internal/interfaces"
	"github.com/bobmcallan/tickerpress/internal/models"
)

type newsStorage struct {
	store  *Store
	logger *common.Logger
}

// NewNewsStorage creates a new NewsStore backed by BadgerHold.
func NewNewsStorage(store *Store, logger *common.Logger) interfaces.NewsStore {
	return &newsStorage{store: store, logger: logger}
}

func (s *newsStorage) InsertBatch(_ context.Context, items []*models.NewsItem) error {
	for _, item := range items {
		if item.CreatedAt.IsZero() {
			item.CreatedAt = time.Now()
		}
		id, err := s.store.NextID("news")
		if err != nil {
			return fmt.Errorf("failed to assign news id: %w", err)
		}
		item.ID = id

		if err := s.store.db.Insert(item.ID, item); err != nil {
			return fmt.Errorf("failed to insert news for '%s': %w", item.Symbol, err)
		}
	}

	if len(items) > 0 {
		s.logger.Debug().Str("symbol", items[0].Symbol).Int("items", len(items)).Msg("News stored")
	}
	return nil
}

func (s *newsStorage) ListBySymbol(_ context.Context, symbol string, limit int) ([]*models.NewsItem, error) {
	var items []*models.NewsItem
	query := badgerhold.Where("Symbol").Eq(symbol).Index("Symbol")
	if err := s.store.db.Find(&items, query); err != nil {
		return nil, fmt.Errorf("failed to list news for '%s': %w", symbol, err)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
