// Package contextstore manages named, versioned key-value contexts shared
// between tasks and components, persisted in an embedded BadgerDB store.
package contextstore

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/devflowhq/devflow/contracts"
)

// keyPrefix namespaces context records inside the Badger keyspace.
const keyPrefix = "context/"

// Config holds context store configuration.
type Config struct {
	// StorageDir is the directory for the Badger database files.
	// Ignored when InMemory is true.
	StorageDir string

	// InMemory enables an in-memory database (no disk persistence).
	// Useful for testing.
	InMemory bool

	// AutoSave persists every mutation immediately. When false, records are
	// only written on Save and Cleanup.
	AutoSave bool
}

// DefaultConfig returns the production defaults: on-disk storage under
// .devflow/context with auto-save enabled.
func DefaultConfig() Config {
	return Config{
		StorageDir: ".devflow/context",
		AutoSave:   true,
	}
}

// Record is a named context with versioning metadata. Data is the mutable
// payload; Version increments on every update.
type Record struct {
	ID        string            `json:"id"`
	Data      contracts.Context `json:"data"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Version   int               `json:"version"`
}

// Change describes one context mutation, kept in the in-memory history.
type Change struct {
	ID        string    `json:"id"`
	ContextID string    `json:"context_id"`
	Timestamp time.Time `json:"timestamp"`
	Version   int       `json:"version"`
	Changed   []string  `json:"changed"`
}

// Store manages named contexts with an in-memory working set backed by
// BadgerDB.
//
// Thread-safety: all operations are safe for concurrent use.
type Store struct {
	name string
	cfg  Config

	mu       sync.RWMutex
	db       *badger.DB
	contexts map[string]*Record
	history  []Change

	initialized bool
	enabled     bool
}

// New creates a context store with the given configuration. Initialize must
// be called before use; it opens the database.
func New(cfg Config) *Store {
	if cfg.StorageDir == "" && !cfg.InMemory {
		cfg.StorageDir = DefaultConfig().StorageDir
	}
	return &Store{
		name:     "context",
		cfg:      cfg,
		contexts: make(map[string]*Record),
		enabled:  true,
	}
}

// Name returns the component name.
func (s *Store) Name() string { return s.name }

// Initialize opens the Badger database and loads existing records into the
// working set.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		s.initialized = true
		return nil
	}

	opts := badger.DefaultOptions(s.cfg.StorageDir).WithLogger(nil)
	if s.cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("").WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("opening context store: %w", err)
	}
	s.db = db

	if err := s.loadAllLocked(); err != nil {
		_ = db.Close()
		s.db = nil
		return err
	}

	s.initialized = true
	return nil
}

// loadAllLocked populates the working set from every persisted record.
func (s *Store) loadAllLocked() error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec Record
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("decoding context record: %w", err)
				}
				s.contexts[rec.ID] = &rec
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Create registers a new context under id with the given initial data.
// An existing context of the same id is replaced.
func (s *Store) Create(id string, data contracts.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(id, data)
}

// createLocked registers a fresh record under id. Caller holds s.mu.
func (s *Store) createLocked(id string, data contracts.Context) error {
	if data == nil {
		data = make(contracts.Context)
	}
	now := time.Now()
	rec := &Record{
		ID:        id,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
	s.contexts[id] = rec

	if s.cfg.AutoSave {
		return s.saveLocked(rec)
	}
	return nil
}

// Get returns the context registered under id.
func (s *Store) Get(id string) (*Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.contexts[id]
	return rec, ok
}

// Update applies data to an existing context. With merge true the keys are
// merged over the current data; with merge false the data replaces it.
// Updating an unknown id creates the context instead. The lock is held for
// the whole operation, so a concurrent Delete or Create cannot interleave
// between the existence check and the write.
func (s *Store) Update(id string, data contracts.Context, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.contexts[id]
	if !exists {
		return s.createLocked(id, data)
	}

	if merge {
		for k, v := range data {
			rec.Data[k] = v
		}
	} else {
		rec.Data = data
	}
	rec.UpdatedAt = time.Now()
	rec.Version++

	changed := make([]string, 0, len(data))
	for k := range data {
		changed = append(changed, k)
	}
	s.history = append(s.history, Change{
		ID:        uuid.NewString(),
		ContextID: id,
		Timestamp: rec.UpdatedAt,
		Version:   rec.Version,
		Changed:   changed,
	})

	if s.cfg.AutoSave {
		return s.saveLocked(rec)
	}
	return nil
}

// Delete removes a context from the working set and from disk. Returns false
// if the id is unknown.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.contexts[id]; !exists {
		return false
	}
	delete(s.contexts, id)

	if s.db != nil {
		_ = s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete([]byte(keyPrefix + id))
		})
	}
	return true
}

// Save persists the context registered under id.
func (s *Store) Save(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.contexts[id]
	if !exists {
		return fmt.Errorf("save %s: %w", id, contracts.ErrContextNotFound)
	}
	return s.saveLocked(rec)
}

// saveLocked writes a record to the database. Caller holds s.mu.
func (s *Store) saveLocked(rec *Record) error {
	if s.db == nil {
		return contracts.ErrStoreClosed
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding context %s: %w", rec.ID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+rec.ID), data)
	})
}

// Load reads the context registered under id back from disk into the working
// set, discarding unsaved in-memory changes. Returns false when no persisted
// record exists.
func (s *Store) Load(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return false
	}

	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return false
	}

	s.contexts[id] = &rec
	return true
}

// List returns the ids of every context in the working set.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.contexts))
	for id := range s.contexts {
		ids = append(ids, id)
	}
	return ids
}

// Share copies the named keys from the source context into the target.
// Keys absent from the source are silently skipped. Returns false when the
// source is unknown or none of the keys were present.
func (s *Store) Share(sourceID, targetID string, keys []string) (bool, error) {
	s.mu.RLock()
	source, exists := s.contexts[sourceID]
	if !exists {
		s.mu.RUnlock()
		return false, nil
	}

	shared := make(contracts.Context)
	for _, key := range keys {
		if v, ok := source.Data[key]; ok {
			shared[key] = v
		}
	}
	s.mu.RUnlock()

	if len(shared) == 0 {
		return false, nil
	}
	if err := s.Update(targetID, shared, true); err != nil {
		return false, err
	}
	return true, nil
}

// History returns a copy of the change history.
func (s *Store) History() []Change {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Change(nil), s.history...)
}

// Validate checks that the store is usable.
func (s *Store) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return contracts.ErrStoreClosed
	}
	return nil
}

// Status reports the store's current state.
func (s *Store) Status() contracts.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.contexts))
	for id := range s.contexts {
		ids = append(ids, id)
	}
	return contracts.Status{
		"enabled":        s.enabled,
		"initialized":    s.initialized,
		"contexts_count": len(s.contexts),
		"contexts":       ids,
		"storage_dir":    s.cfg.StorageDir,
		"auto_save":      s.cfg.AutoSave,
		"history_count":  len(s.history),
	}
}

// Cleanup flushes every context to disk and closes the database.
func (s *Store) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	for _, rec := range s.contexts {
		if err := s.saveLocked(rec); err != nil {
			return err
		}
	}
	err := s.db.Close()
	s.db = nil
	s.initialized = false
	return err
}

// Enabled reports whether the component is enabled.
func (s *Store) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// SetEnabled enables or disables the component.
func (s *Store) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}
