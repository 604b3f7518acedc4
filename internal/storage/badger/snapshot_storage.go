package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/tickerpress/internal/common"
	"github.com/bobmcallan/tickerpress/internal/interfaces"
	"github.com/bobmcallan/tickerpress/internal/models"
)

type snapshotStorage struct {
	store  *Store
	logger *common.Logger
}

// NewSnapshotStorage creates a new SnapshotStore backed by BadgerHold.
func NewSnapshotStorage(store *Store, logger *common.Logger) interfaces.SnapshotStore {
	return &snapshotStorage{store: store, logger: logger}
}

// ReplaceForDate deletes all snapshots for the day and inserts rows in one
// Badger transaction, so readers never observe a partially replaced day.
func (s *snapshotStorage) ReplaceForDate(_ context.Context, day time.Time, rows []*models.StockSnapshot) error {
	start, end := dayRange(day)
	query := badgerhold.Where("Date").Ge(start).And("Date").Lt(end)

	err := s.store.db.Badger().Update(func(tx *badgerdb.Txn) error {
		if err := s.store.db.TxDeleteMatching(tx, &models.StockSnapshot{}, query); err != nil {
			return fmt.Errorf("failed to clear snapshots for %s: %w", start.Format("2006-01-02"), err)
		}
		for _, row := range rows {
			if row.CreatedAt.IsZero() {
				row.CreatedAt = time.Now()
			}
			id, err := s.store.NextID("snapshots")
			if err != nil {
				return fmt.Errorf("failed to assign snapshot id: %w", err)
			}
			row.ID = id
			if err := s.store.db.TxInsert(tx, row.ID, row); err != nil {
				return fmt.Errorf("failed to insert snapshot for %s: %w", row.Symbol, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug().Str("date", start.Format("2006-01-02")).Int("rows", len(rows)).Msg("Snapshots replaced")
	return nil
}

func (s *snapshotStorage) ListByDate(_ context.Context, day time.Time) ([]*models.StockSnapshot, error) {
	start, end := dayRange(day)

	var snapshots []*models.StockSnapshot
	query := badgerhold.Where("Date").Ge(start).And("Date").Lt(end)
	if err := s.store.db.Find(&snapshots, query); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].PriceChangePct > snapshots[j].PriceChangePct
	})
	return snapshots, nil
}

func (s *snapshotStorage) GetBySymbol(_ context.Context, symbol string, day *time.Time) (*models.StockSnapshot, error) {
	query := badgerhold.Where("Symbol").Eq(symbol).Index("Symbol")
	if day != nil {
		start, end := dayRange(*day)
		query = query.And("Date").Ge(start).And("Date").Lt(end)
	}

	var snapshots []*models.StockSnapshot
	if err := s.store.db.Find(&snapshots, query); err != nil {
		return nil, fmt.Errorf("failed to get snapshot for '%s': %w", symbol, err)
	}
	if len(snapshots) == 0 {
		return nil, interfaces.ErrNotFound
	}

	// Most recent row wins when no day is given.
	latest := snapshots[0]
	for _, snap := range snapshots[1:] {
		if snap.Date.After(latest.Date) {
			latest = snap
		}
	}
	return latest, nil
}

func (s *snapshotStorage) ListTrending(_ context.Context, day time.Time) ([]*models.StockSnapshot, error) {
	start, end := dayRange(day)

	var snapshots []*models.StockSnapshot
	query := badgerhold.Where("Date").Ge(start).And("Date").Lt(end).And("WSBTrending").Eq(true)
	if err := s.store.db.Find(&snapshots, query); err != nil {
		return nil, fmt.Errorf("failed to list trending snapshots: %w", err)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].WSBMentions > snapshots[j].WSBMentions
	})
	return snapshots, nil
}
