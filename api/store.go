package api

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devflowhq/devflow/contracts"
)

// ExecutionRecord is one completed pipeline run kept in history.
type ExecutionRecord struct {
	ID         string
	Pipeline   string
	StartedAt  time.Time
	FinishedAt time.Time
	Result     *contracts.ExecutionResult
}

// HistoryStore provides thread-safe in-memory storage for execution records.
// Records beyond the capacity are pruned oldest-first.
type HistoryStore struct {
	mu       sync.RWMutex
	records  map[string]*ExecutionRecord
	order    []string // record IDs, oldest first
	capacity int
}

// NewHistoryStore creates a history store holding at most capacity records.
// A non-positive capacity defaults to 100.
func NewHistoryStore(capacity int) *HistoryStore {
	if capacity <= 0 {
		capacity = 100
	}
	return &HistoryStore{
		records:  make(map[string]*ExecutionRecord),
		capacity: capacity,
	}
}

// Add records one execution and returns the stored record.
func (s *HistoryStore) Add(pipeline string, started, finished time.Time, result *contracts.ExecutionResult) *ExecutionRecord {
	rec := &ExecutionRecord{
		ID:         uuid.NewString(),
		Pipeline:   pipeline,
		StartedAt:  started,
		FinishedAt: finished,
		Result:     result,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.records, oldest)
	}
	return rec
}

// Get returns the record with the given id.
func (s *HistoryStore) Get(id string) (*ExecutionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

// List returns records newest first, optionally filtered by pipeline name.
// A positive limit caps the result length.
func (s *HistoryStore) List(pipeline string, limit int) []*ExecutionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*ExecutionRecord, 0, len(s.order))
	for _, id := range s.order {
		rec := s.records[id]
		if pipeline != "" && rec.Pipeline != pipeline {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Len returns the number of stored records.
func (s *HistoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
