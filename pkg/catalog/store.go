package catalog

import (
	"log/slog"
	"sync/atomic"
)

var emptySnapshot = NewSnapshot(Data{})

// Store holds the current Snapshot. Readers never block; Swap replaces the
// snapshot wholesale and readers holding the old one keep using it.
type Store struct {
	current atomic.Pointer[Snapshot]
	logger  *slog.Logger
}

var _ Source = (*Store)(nil)

// NewStore creates a Store holding initial, which may be nil.
func NewStore(initial *Snapshot, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Store{logger: logger}
	if initial != nil {
		s.current.Store(initial)
	}
	return s
}

// Current returns the current catalog; an empty catalog before the first
// swap, and nil on a nil Store.
func (s *Store) Current() SchemaCatalog {
	if s == nil {
		return nil
	}
	return s.Snapshot()
}

// Snapshot returns the current snapshot, never nil.
func (s *Store) Snapshot() *Snapshot {
	if s == nil {
		return emptySnapshot
	}
	if snap := s.current.Load(); snap != nil {
		return snap
	}
	return emptySnapshot
}

// Loaded reports whether a snapshot has been stored.
func (s *Store) Loaded() bool {
	return s != nil && s.current.Load() != nil
}

// Swap installs snap and returns the previous snapshot, or nil.
func (s *Store) Swap(snap *Snapshot) *Snapshot {
	old := s.current.Swap(snap)
	if snap != nil {
		s.logger.Debug("catalog swapped",
			"schemas", len(snap.schemas),
			"tables", len(snap.data.Tables),
			"functions", len(snap.data.Functions))
	}
	return old
}
