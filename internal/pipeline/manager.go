package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/devflowhq/devflow/contracts"
	"github.com/devflowhq/devflow/internal/audit"
)

// Manager is a named registry of pipelines and a thin dispatch layer over
// them. It implements the Component protocol so a Project can manage its
// lifecycle alongside the other subsystems.
//
// Thread-safety: the manager assumes single-threaded use, matching the
// execution model. Callers that expose it over concurrent surfaces (the HTTP
// API does) must serialize access externally.
type Manager struct {
	name      string
	pipelines map[string]*Pipeline
	order     []string

	recorder contracts.Recorder // optional progress sink
	logger   *slog.Logger

	initialized bool
	enabled     bool
}

// NewManager creates an empty pipeline manager.
func NewManager() *Manager {
	return &Manager{
		name:      "pipeline",
		pipelines: make(map[string]*Pipeline),
		logger:    slog.Default(),
		enabled:   true,
	}
}

// SetRecorder attaches an optional progress recorder. Execution events are
// reported to it in addition to the structured log.
func (m *Manager) SetRecorder(r contracts.Recorder) {
	m.recorder = r
}

// SetLogger overrides the manager's logger.
func (m *Manager) SetLogger(l *slog.Logger) {
	if l != nil {
		m.logger = l
	}
}

// CreatePipeline registers a new empty pipeline under name, overwriting any
// existing pipeline of the same name (last write wins).
func (m *Manager) CreatePipeline(name, description string) *Pipeline {
	p := New(name, description)
	if _, exists := m.pipelines[name]; !exists {
		m.order = append(m.order, name)
	}
	m.pipelines[name] = p
	return p
}

// GetPipeline returns the pipeline registered under name.
func (m *Manager) GetPipeline(name string) (*Pipeline, bool) {
	p, ok := m.pipelines[name]
	return p, ok
}

// DeletePipeline removes a pipeline by name. Returns false if no pipeline
// was registered under that name.
func (m *Manager) DeletePipeline(name string) bool {
	if _, exists := m.pipelines[name]; !exists {
		return false
	}
	delete(m.pipelines, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// ExecutePipeline runs the named pipeline with the given initial context.
// An unregistered name yields a structured failure result, not an error:
// lookup failures are data, with a shape distinct from a pipeline-level
// validation failure.
func (m *Manager) ExecutePipeline(name string, rc contracts.Context) *contracts.ExecutionResult {
	p, ok := m.pipelines[name]
	if !ok {
		return &contracts.ExecutionResult{
			Success: false,
			Error:   fmt.Sprintf("Pipeline not found: %s", name),
		}
	}

	m.logger.Info("executing pipeline", "pipeline", name, "tasks", p.Len())
	started := time.Now()

	result := p.Execute(rc)

	audit.Log("pipeline_executed",
		"pipeline", name,
		"success", result.Success,
		"completed", len(result.CompletedTasks),
		"failed", len(result.FailedTasks),
		"duration", time.Since(started).String(),
	)
	if m.recorder != nil {
		level := "success"
		message := fmt.Sprintf("Pipeline completed: %s", name)
		if !result.Success {
			level = "error"
			message = fmt.Sprintf("Pipeline failed: %s", name)
		}
		m.recorder.LogEvent(message, level, "pipeline", map[string]any{
			"pipeline":  name,
			"completed": result.CompletedTasks,
			"failed":    result.FailedTasks,
		})
	}

	return result
}

// ListPipelines returns pipeline names in registration order.
func (m *Manager) ListPipelines() []string {
	return append([]string(nil), m.order...)
}

// =============================================================================
// Component protocol
// =============================================================================

// Name returns the component name.
func (m *Manager) Name() string { return m.name }

// Initialize marks the manager ready.
func (m *Manager) Initialize() error {
	m.initialized = true
	return nil
}

// Validate checks every registered pipeline's dependency graph.
func (m *Manager) Validate() error {
	var errs []error
	for _, name := range m.order {
		for _, msg := range m.pipelines[name].Validate() {
			errs = append(errs, fmt.Errorf("pipeline %s: %s", name, msg))
		}
	}
	return errors.Join(errs...)
}

// Status reports the manager's state, including per-pipeline status.
func (m *Manager) Status() contracts.Status {
	pipelines := make(map[string]contracts.Status, len(m.pipelines))
	for name, p := range m.pipelines {
		pipelines[name] = p.Status()
	}
	return contracts.Status{
		"enabled":         m.enabled,
		"initialized":     m.initialized,
		"pipelines_count": len(m.pipelines),
		"pipelines":       pipelines,
	}
}

// Cleanup releases manager resources. Pipelines are in-memory only, so this
// is a no-op beyond resetting the initialized flag.
func (m *Manager) Cleanup() error {
	m.initialized = false
	return nil
}

// Enabled reports whether the component is enabled.
func (m *Manager) Enabled() bool { return m.enabled }

// SetEnabled enables or disables the component.
func (m *Manager) SetEnabled(enabled bool) { m.enabled = enabled }
