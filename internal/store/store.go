package store

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/foxzi/campaigner/internal/models"
)

// ErrNotFound is returned when an entity id does not resolve
var ErrNotFound = errors.New("not found")

// Store is the single owner of the application state.
//
// Every mutation runs as a closure against the live state under one lock and
// patches entities by id; the resulting document is persisted before the lock
// is released. Callers never write back whole copies they read earlier, so two
// asynchronous operations finishing out of order cannot overwrite each other.
type Store struct {
	mu      sync.Mutex
	state   models.State
	storage Storage
	logger  *slog.Logger
}

// New loads the persisted document from storage. A missing, unreadable or
// corrupt document yields an empty state; the problem is only logged.
func New(storage Storage, logger *slog.Logger) *Store {
	s := &Store{
		storage: storage,
		logger:  logger.With("component", "store"),
	}
	s.state = s.load()
	return s
}

func (s *Store) load() models.State {
	data, err := s.storage.Load()
	if err != nil {
		s.logger.Warn("failed to read state, starting empty", "error", err)
		return models.NewState()
	}
	if len(data) == 0 {
		return models.NewState()
	}

	var st models.State
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("corrupt state document, starting empty", "error", err)
		return models.NewState()
	}
	st.Normalize()
	return st
}

// save writes the current state. Failures are logged and otherwise ignored.
// Must be called with mu held.
func (s *Store) save() {
	data, err := json.Marshal(&s.state)
	if err != nil {
		s.logger.Warn("failed to encode state", "error", err)
		return
	}
	if err := s.storage.Save(data); err != nil {
		s.logger.Warn("failed to save state", "error", err)
	}
}

// Update applies fn to a working copy of the state. If fn returns an error the
// state is left untouched; otherwise the copy replaces the state and is saved.
func (s *Store) Update(fn func(st *models.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	next.Normalize()
	s.state = next
	s.save()
	return nil
}

// View runs fn against the live state under the lock. fn must not retain
// references into the state.
func (s *Store) View(fn func(st *models.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// Snapshot returns a deep copy of the whole state
func (s *Store) Snapshot() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Replace swaps in a whole new document (import)
func (s *Store) Replace(st models.State) {
	st = st.Clone()
	st.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	s.save()
}
