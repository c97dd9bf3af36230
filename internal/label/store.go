package label

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"bricklabels.dev/internal/persistence/kv"
)

// RecordKey is the settings-store record holding the whole label map.
const RecordKey = "labels"

var (
	ErrNotFound = errors.New("no label at position")
	ErrExists   = errors.New("label already at position")
)

// Store is the authoritative position -> label mapping. The full map
// is loaded once at startup and rewritten to the settings store after
// every mutation. Mutations happen from command workflows only; the
// mutex covers the resumption of concurrently suspended workflows.
type Store struct {
	mu     sync.Mutex
	labels map[string]Label
	kv     kv.Store
}

func NewStore(settings kv.Store) *Store {
	return &Store{
		labels: make(map[string]Label),
		kv:     settings,
	}
}

// Load reads the label map from the settings store, initializing an
// empty record if none exists yet.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.kv.Get(RecordKey)
	if err != nil {
		return fmt.Errorf("load labels: %w", err)
	}
	if !ok {
		return s.persistLocked()
	}
	m := make(map[string]Label)
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("load labels: %w", err)
	}
	s.labels = m
	return nil
}

func (s *Store) persistLocked() error {
	b, err := json.Marshal(s.labels)
	if err != nil {
		return err
	}
	return s.kv.Set(RecordKey, b)
}

func (s *Store) Get(pos Vec3i) (Label, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.labels[pos.Key()]
	return l, ok
}

// Put inserts or overwrites the label at pos and persists.
func (s *Store) Put(pos Vec3i, l Label) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels[pos.Key()] = l
	return s.persistLocked()
}

// Remove deletes the label at pos if present and persists.
func (s *Store) Remove(pos Vec3i) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.labels[pos.Key()]; !ok {
		return ErrNotFound
	}
	delete(s.labels, pos.Key())
	return s.persistLocked()
}

// Move relocates the label at from to to. The source must exist and
// the destination must be free; both are checked under the lock so a
// caller never observes a half-moved label. Persists once.
func (s *Store) Move(from, to Vec3i) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.labels[from.Key()]
	if !ok {
		return ErrNotFound
	}
	if _, taken := s.labels[to.Key()]; taken {
		return ErrExists
	}
	s.labels[to.Key()] = l
	delete(s.labels, from.Key())
	return s.persistLocked()
}

// Copy duplicates the label at from onto to, leaving from intact.
// Same precondition checks as Move.
func (s *Store) Copy(from, to Vec3i) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.labels[from.Key()]
	if !ok {
		return ErrNotFound
	}
	if _, taken := s.labels[to.Key()]; taken {
		return ErrExists
	}
	s.labels[to.Key()] = l
	return s.persistLocked()
}

// CountByOwner counts the labels owned by a player. Linear scan;
// label maps stay small.
func (s *Store) CountByOwner(ownerID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.labels {
		if l.Owner.ID == ownerID {
			n++
		}
	}
	return n
}

// ReconcileAgainstWorld removes every label whose position is not in
// validKeys and reports how many were dropped. Persists once.
func (s *Store) ReconcileAgainstWorld(validKeys map[string]struct{}) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key := range s.labels {
		if _, ok := validKeys[key]; !ok {
			delete(s.labels, key)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.persistLocked()
}

// ReplaceAll swaps in a whole new label map (reset, import).
func (s *Store) ReplaceAll(m map[string]Label) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m == nil {
		m = make(map[string]Label)
	}
	s.labels = m
	return s.persistLocked()
}

// Snapshot returns a copy of the current map for export and backups.
func (s *Store) Snapshot() map[string]Label {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Label, len(s.labels))
	for k, v := range s.labels {
		out[k] = v
	}
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.labels)
}
