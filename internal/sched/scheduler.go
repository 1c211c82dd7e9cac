// Package sched runs pipelines on cron schedules.
package sched

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/devflowhq/devflow/api"
	"github.com/devflowhq/devflow/internal/audit"
	"github.com/devflowhq/devflow/internal/pipeline"
)

// Scheduler triggers pipeline executions on cron schedules. Each tick runs
// the pipeline through the manager and records the outcome in the history
// store.
//
// Thread-safety: Add/Start/Stop are safe for concurrent use. Ticks take the
// execution lock before touching the manager, so every manager caller in the
// process (API handlers, config reloads) must share that same lock.
type Scheduler struct {
	manager *pipeline.Manager
	history *api.HistoryStore
	logger  *slog.Logger

	// execLock guards all manager access, shared with the other manager
	// callers in the process.
	execLock *sync.Mutex

	mu      sync.Mutex // guards entries and started
	cron    *cron.Cron
	entries map[string]cron.EntryID
	started bool
}

// New creates a scheduler executing through manager. history may be nil; in
// that case outcomes are only logged. execLock is the mutex serializing all
// manager access; nil allocates a private one, which is only correct when
// the scheduler is the manager's sole caller.
func New(manager *pipeline.Manager, history *api.HistoryStore, execLock *sync.Mutex) *Scheduler {
	if execLock == nil {
		execLock = &sync.Mutex{}
	}
	return &Scheduler{
		manager:  manager,
		history:  history,
		logger:   slog.Default(),
		execLock: execLock,
		cron:     cron.New(),
		entries:  make(map[string]cron.EntryID),
	}
}

// Add schedules the named pipeline with a standard cron expression.
// Re-adding a pipeline replaces its previous schedule.
func (s *Scheduler) Add(pipelineName, cronSpec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, exists := s.entries[pipelineName]; exists {
		s.cron.Remove(old)
		delete(s.entries, pipelineName)
	}

	id, err := s.cron.AddFunc(cronSpec, func() { s.run(pipelineName) })
	if err != nil {
		return fmt.Errorf("scheduling %s (%q): %w", pipelineName, cronSpec, err)
	}
	s.entries[pipelineName] = id

	s.logger.Info("pipeline scheduled", "pipeline", pipelineName, "schedule", cronSpec)
	return nil
}

// Remove drops the named pipeline's schedule. Unknown names are ignored.
func (s *Scheduler) Remove(pipelineName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.entries[pipelineName]; exists {
		s.cron.Remove(id)
		delete(s.entries, pipelineName)
	}
}

// Scheduled returns the names of all scheduled pipelines.
func (s *Scheduler) Scheduled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}

// run executes one scheduled tick under the shared execution lock.
func (s *Scheduler) run(pipelineName string) {
	s.execLock.Lock()
	defer s.execLock.Unlock()

	started := time.Now()
	result := s.manager.ExecutePipeline(pipelineName, nil)
	finished := time.Now()

	if s.history != nil {
		s.history.Add(pipelineName, started, finished, result)
	}
	audit.Log("scheduled_run",
		"pipeline", pipelineName,
		"success", result.Success,
		"duration", finished.Sub(started).String(),
	)
}

// Start begins firing schedules in a background goroutine.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.cron.Start()
	s.started = true
}

// Stop halts the scheduler and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	ctx := s.cron.Stop()
	s.mu.Unlock()

	<-ctx.Done()
}
