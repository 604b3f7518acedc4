// Package badger provides BadgerHold-based storage implementations for
// tickerpress data.
package badger

import (
	"fmt"
	"os"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/tickerpress/internal/common"
)

// sequenceBandwidth is how many IDs each lease reserves; unused IDs in a
// lease are lost on close, leaving gaps but never duplicates.
const sequenceBandwidth = 64

// Store wraps a BadgerHold database connection.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger

	mu        sync.Mutex
	sequences map[string]*badgerdb.Sequence
}

// NewStore creates a new BadgerHold store at the given directory path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create badger directory %s: %w", path, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // Disable default badger logger

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Str("path", path).Msg("BadgerHold store opened")

	return &Store{
		db:        db,
		logger:    logger,
		sequences: make(map[string]*badgerdb.Sequence),
	}, nil
}

// NextID returns the next auto-increment ID for the named record type.
// IDs start at 1, so a zero ID always means "not persisted yet".
func (s *Store) NextID(name string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, ok := s.sequences[name]
	if !ok {
		var err error
		seq, err = s.db.Badger().GetSequence([]byte("seq_"+name), sequenceBandwidth)
		if err != nil {
			return 0, fmt.Errorf("failed to open sequence %s: %w", name, err)
		}
		s.sequences[name] = seq
	}

	v, err := seq.Next()
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}
	return v + 1, nil
}

// DB returns the underlying badgerhold store.
func (s *Store) DB() *badgerhold.Store {
	return s.db
}

// Close releases the ID sequences and closes the BadgerHold database.
func (s *Store) Close() error {
	s.mu.Lock()
	for name, seq := range s.sequences {
		if err := seq.Release(); err != nil {
			s.logger.Warn().Err(err).Str("sequence", name).Msg("Failed to release sequence")
		}
	}
	s.sequences = make(map[string]*badgerdb.Sequence)
	s.mu.Unlock()

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// dayRange returns the half-open [start, end) window covering the calendar
// day that t falls on, in t's location.
func dayRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
