// Package storage provides the top-level StorageManager coordinating the
// snapshot, article, news, and job stores over one embedded database.
package storage

import (
	"fmt"

	"github.com/bobmcallan/tickerpress/internal/common"
	"github.com/bobmcallan/tickerpress/internal/interfaces"
	"github.com/bobmcallan/tickerpress/internal/storage/badger"
)

// Manager implements interfaces.StorageManager over a single BadgerHold
// database.
type Manager struct {
	store     *badger.Store
	snapshots interfaces.SnapshotStore
	articles  interfaces.ArticleStore
	news      interfaces.NewsStore
	jobs      interfaces.JobStore
	logger    *common.Logger
}

// NewManager opens the database at config.Storage.Path and wires the stores.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := badger.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	logger.Info().Str("path", config.Storage.Path).Msg("Storage manager initialized")

	return &Manager{
		store:     store,
		snapshots: badger.NewSnapshotStorage(store, logger),
		articles:  badger.NewArticleStorage(store, logger),
		news:      badger.NewNewsStorage(store, logger),
		jobs:      badger.NewJobStorage(store, logger),
		logger:    logger,
	}, nil
}

func (m *Manager) Snapshots() interfaces.SnapshotStore {
	return m.snapshots
}

func (m *Manager) Articles() interfaces.ArticleStore {
	return m.articles
}

func (m *Manager) News() interfaces.NewsStore {
	return m.news
}

func (m *Manager) Jobs() interfaces.JobStore {
	return m.jobs
}

func (m *Manager) Close() error {
	return m.store.Close()
}

// Ensure Manager implements StorageManager
var _ interfaces.StorageManager = (*Manager)(nil)
