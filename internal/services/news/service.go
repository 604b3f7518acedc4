// Package news fetches, deduplicates, and stores headlines per symbol.
package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/tickerpress/internal/common"
	"github.com/bobmcallan/tickerpress/internal/interfaces"
	"github.com/bobmcallan/tickerpress/internal/models"
)

const (
	// maxStoredPerFetch caps how many headlines one fetch persists.
	maxStoredPerFetch = 10

	// summaryHeadlines and summaryMaxChars bound the prompt block.
	summaryHeadlines = 5
	summaryMaxChars  = 150
)

// Service implements the NewsService interface over a set of providers.
type Service struct {
	store   interfaces.NewsStore
	clients []interfaces.NewsClient
	logger  *common.Logger
	now     func() time.Time
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a news service. Providers are queried in order; keep
// the free keyless source first.
func NewService(store interfaces.NewsStore, clients []interfaces.NewsClient, logger *common.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		clients: clients,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchAndStore queries every provider for the symbol, drops duplicate
// headlines (first occurrence wins), caps the batch, and persists it. A
// provider failing is non-fatal; a failing store write is.
func (s *Service) FetchAndStore(ctx context.Context, symbol, companyName string) ([]*models.NewsItem, error) {
	var collected []*models.NewsItem
	for _, client := range s.clients {
		items, err := client.FetchNews(ctx, symbol, companyName)
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Str("provider", client.Name()).
				Msg("News provider failed, continuing")
			continue
		}
		for _, item := range items {
			if item.Source == "" {
				item.Source = client.Name()
			}
		}
		collected = append(collected, items...)
	}

	seen := make(map[string]bool, len(collected))
	unique := make([]*models.NewsItem, 0, len(collected))
	for _, item := range collected {
		if item.Headline == "" || seen[item.Headline] {
			continue
		}
		seen[item.Headline] = true
		unique = append(unique, item)
		if len(unique) == maxStoredPerFetch {
			break
		}
	}

	now := s.now()
	for _, item := range unique {
		item.Symbol = symbol
		if item.Date.IsZero() {
			item.Date = now
		}
		item.CreatedAt = now
	}

	if err := s.store.InsertBatch(ctx, unique); err != nil {
		return nil, fmt.Errorf("failed to store news for '%s': %w", symbol, err)
	}

	s.logger.Info().Str("symbol", symbol).Int("stored", len(unique)).Msg("News stored")
	return unique, nil
}

// SummaryText renders up to five stored headlines for the article prompt.
func (s *Service) SummaryText(ctx context.Context, symbol string) (string, error) {
	items, err := s.store.ListBySymbol(ctx, symbol, summaryHeadlines)
	if err != nil {
		return "", fmt.Errorf("failed to load news for '%s': %w", symbol, err)
	}
	if len(items) == 0 {
		return "No recent news available.", nil
	}

	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, item.Headline, item.Source)
		if item.Summary != "" {
			summary := item.Summary
			if len(summary) > summaryMaxChars {
				summary = summary[:summaryMaxChars] + "..."
			}
			fmt.Fprintf(&b, "   %s\n", summary)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// Ensure Service implements NewsService
var _ interfaces.NewsService = (*Service)(nil)
