package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/tickerpress/internal/common"
	"github.com/bobmcallan/tickerpress/internal/interfaces"
	"github.com/bobmcallan/tickerpress/internal/models"
)

type articleStorage struct {
	store  *Store
	logger *common.Logger
}

// NewArticleStorage creates a new ArticleStore backed by BadgerHold.
func NewArticleStorage(store *Store, logger *common.Logger) interfaces.ArticleStore {
	return &articleStorage{store: store, logger: logger}
}

func (s *articleStorage) Insert(_ context.Context, a *models.Article) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	id, err := s.store.NextID("articles")
	if err != nil {
		return fmt.Errorf("failed to assign article id: %w", err)
	}
	a.ID = id

	err = s.store.db.Insert(a.ID, a)
	if err != nil {
		if errors.Is(err, badgerhold.ErrUniqueExists) {
			return interfaces.ErrSlugExists
		}
		return fmt.Errorf("failed to insert article for '%s': %w", a.Symbol, err)
	}

	s.logger.Debug().Str("symbol", a.Symbol).Str("slug", a.Slug).Msg("Article stored")
	return nil
}

func (s *articleStorage) GetByID(_ context.Context, id uint64) (*models.Article, error) {
	var a models.Article
	if err := s.store.db.Get(id, &a); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get article %d: %w", id, err)
	}
	return &a, nil
}

func (s *articleStorage) GetBySlug(_ context.Context, slug string) (*models.Article, error) {
	var a models.Article
	err := s.store.db.FindOne(&a, badgerhold.Where("Slug").Eq(slug))
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get article by slug '%s': %w", slug, err)
	}
	return &a, nil
}

func (s *articleStorage) ListBySymbol(_ context.Context, symbol string, limit int) ([]*models.Article, error) {
	var articles []*models.Article
	query := badgerhold.Where("Symbol").Eq(symbol).Index("Symbol")
	if err := s.store.db.Find(&articles, query); err != nil {
		return nil, fmt.Errorf("failed to list articles for '%s': %w", symbol, err)
	}

	sort.Slice(articles, func(i, j int) bool {
		return articles[i].CreatedAt.After(articles[j].CreatedAt)
	})
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

func (s *articleStorage) ListByDate(_ context.Context, day time.Time) ([]*models.Article, error) {
	start, end := dayRange(day)

	var articles []*models.Article
	query := badgerhold.Where("Date").Ge(start).And("Date").Lt(end)
	if err := s.store.db.Find(&articles, query); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	sort.Slice(articles, func(i, j int) bool {
		return articles[i].CreatedAt.After(articles[j].CreatedAt)
	})
	return articles, nil
}
