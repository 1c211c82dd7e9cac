// Package feedback tracks and delivers actionable progress feedback:
// events, milestones and metrics, with summaries tailored to different
// audiences (technical, executive, creative).
package feedback

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devflowhq/devflow/contracts"
	"github.com/devflowhq/devflow/internal/ux"
)

// Level selects the detail level of progress summaries.
type Level string

const (
	// LevelTechnical includes full event and milestone dumps.
	LevelTechnical Level = "technical"
	// LevelExecutive surfaces only milestones flagged for executives.
	LevelExecutive Level = "executive"
	// LevelCreative adds a narrative story line.
	LevelCreative Level = "creative"
)

// Event levels.
const (
	EventInfo    = "info"
	EventWarning = "warning"
	EventError   = "error"
	EventSuccess = "success"
)

// Event is one recorded progress event.
type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Message   string         `json:"message"`
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Milestone is a named project milestone.
type Milestone struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Completed   bool           `json:"completed"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Metric is a tracked value with its last update time.
type Metric struct {
	Value     any       `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MilestoneStats aggregates milestone progress.
type MilestoneStats struct {
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Percentage float64 `json:"percentage"`
}

// Summary is a level-tailored progress report.
type Summary struct {
	Level         Level             `json:"level"`
	Timestamp     time.Time         `json:"timestamp"`
	Milestones    MilestoneStats    `json:"milestones"`
	RecentEvents  []Event           `json:"recent_events"`
	Metrics       map[string]Metric `json:"metrics"`
	AllEvents     []Event           `json:"all_events,omitempty"`
	AllMilestones []Milestone       `json:"all_milestones,omitempty"`
	KeyMilestones []Milestone       `json:"key_milestones,omitempty"`
	Story         string            `json:"story,omitempty"`
}

// Config holds feedback tracker configuration.
type Config struct {
	// LogDir is the directory exported reports are written to.
	LogDir string

	// DefaultLevel is the summary level used when none is requested.
	DefaultLevel Level

	// Console enables rendering events to ConsoleOut as they arrive.
	Console bool

	// ConsoleOut is the console destination. Defaults to os.Stdout.
	ConsoleOut io.Writer
}

// Tracker records events, milestones and metrics, fans events out to
// listeners, and produces audience-tailored summaries. It implements both
// the Component protocol and contracts.Recorder.
//
// Thread-safety: all operations are safe for concurrent use. Listeners are
// invoked synchronously while no lock is held.
type Tracker struct {
	name string
	cfg  Config

	mu         sync.RWMutex
	events     []Event
	milestones []*Milestone
	metrics    map[string]Metric
	listeners  []func(Event)

	logger *slog.Logger

	initialized bool
	enabled     bool
}

// New creates a feedback tracker with the given configuration.
func New(cfg Config) *Tracker {
	if cfg.LogDir == "" {
		cfg.LogDir = "logs"
	}
	if cfg.DefaultLevel == "" {
		cfg.DefaultLevel = LevelTechnical
	}
	if cfg.ConsoleOut == nil {
		cfg.ConsoleOut = os.Stdout
	}
	return &Tracker{
		name:    "feedback",
		cfg:     cfg,
		metrics: make(map[string]Metric),
		logger:  slog.Default(),
		enabled: true,
	}
}

// Name returns the component name.
func (t *Tracker) Name() string { return t.name }

// Initialize creates the log directory.
func (t *Tracker) Initialize() error {
	if t.cfg.LogDir != "" {
		if err := os.MkdirAll(t.cfg.LogDir, 0o755); err != nil {
			return fmt.Errorf("creating log dir %s: %w", t.cfg.LogDir, err)
		}
	}
	t.mu.Lock()
	t.initialized = true
	t.mu.Unlock()
	return nil
}

// Validate checks the tracker's state.
func (t *Tracker) Validate() error {
	if t.cfg.LogDir != "" {
		if _, err := os.Stat(t.cfg.LogDir); err != nil {
			return fmt.Errorf("log dir %s: %w", t.cfg.LogDir, err)
		}
	}
	return nil
}

// LogEvent records a progress event, renders it to the console when enabled,
// and notifies listeners. Level is one of info, warning, error, success.
// Implements contracts.Recorder.
func (t *Tracker) LogEvent(message, level, category string, metadata map[string]any) {
	if level == "" {
		level = EventInfo
	}
	if category == "" {
		category = "general"
	}
	event := Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Message:   message,
		Level:     level,
		Category:  category,
		Metadata:  metadata,
	}

	t.mu.Lock()
	t.events = append(t.events, event)
	listeners := append([](func(Event))(nil), t.listeners...)
	t.mu.Unlock()

	if t.cfg.Console {
		fmt.Fprintf(t.cfg.ConsoleOut, "%s [%s] %s\n",
			ux.LevelIcon(level).Render(), category, message)
	}
	t.logger.Debug("feedback event", "level", level, "category", category, "message", message)

	for _, listener := range listeners {
		listener(event)
	}
}

// AddMilestone registers a project milestone. A milestone added as already
// completed logs a success event.
func (t *Tracker) AddMilestone(name, description string, completed bool, metadata map[string]any) {
	now := time.Now()
	m := &Milestone{
		Name:        name,
		Description: description,
		Completed:   completed,
		CreatedAt:   now,
		Metadata:    metadata,
	}
	if completed {
		m.CompletedAt = &now
	}

	t.mu.Lock()
	t.milestones = append(t.milestones, m)
	t.mu.Unlock()

	if completed {
		t.LogEvent(fmt.Sprintf("Milestone completed: %s", name), EventSuccess, "milestone", nil)
	}
}

// CompleteMilestone marks the first incomplete milestone with the given name
// as completed. Returns false when no such milestone exists.
func (t *Tracker) CompleteMilestone(name string) bool {
	t.mu.Lock()
	var found *Milestone
	for _, m := range t.milestones {
		if m.Name == name && !m.Completed {
			found = m
			break
		}
	}
	if found != nil {
		now := time.Now()
		found.Completed = true
		found.CompletedAt = &now
	}
	t.mu.Unlock()

	if found == nil {
		return false
	}
	t.LogEvent(fmt.Sprintf("Milestone completed: %s", name), EventSuccess, "milestone", nil)
	return true
}

// UpdateMetric sets a metric value, stamping the update time.
func (t *Tracker) UpdateMetric(key string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.metrics[key] = Metric{Value: value, UpdatedAt: time.Now()}
}

// AddListener registers a callback invoked for every logged event.
func (t *Tracker) AddListener(fn func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// ProgressSummary builds a progress report tailored to the given level.
// An empty level falls back to the configured default.
func (t *Tracker) ProgressSummary(level Level) Summary {
	if level == "" {
		level = t.cfg.DefaultLevel
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	total := len(t.milestones)
	completed := 0
	for _, m := range t.milestones {
		if m.Completed {
			completed++
		}
	}
	percentage := 0.0
	if total > 0 {
		percentage = float64(completed) / float64(total) * 100
	}

	recent := t.events
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}

	metrics := make(map[string]Metric, len(t.metrics))
	for k, v := range t.metrics {
		metrics[k] = v
	}

	summary := Summary{
		Level:        level,
		Timestamp:    time.Now(),
		Milestones:   MilestoneStats{Total: total, Completed: completed, Percentage: percentage},
		RecentEvents: append([]Event(nil), recent...),
		Metrics:      metrics,
	}

	switch level {
	case LevelTechnical:
		summary.AllEvents = append([]Event(nil), t.events...)
		summary.AllMilestones = t.milestoneCopiesLocked(nil)
	case LevelExecutive:
		summary.KeyMilestones = t.milestoneCopiesLocked(func(m *Milestone) bool {
			visible, _ := m.Metadata["executive_visibility"].(bool)
			return visible
		})
	case LevelCreative:
		summary.Story = t.storyLocked()
	}

	return summary
}

// milestoneCopiesLocked copies milestones matching the filter (nil = all).
// Caller holds t.mu.
func (t *Tracker) milestoneCopiesLocked(keep func(*Milestone) bool) []Milestone {
	var out []Milestone
	for _, m := range t.milestones {
		if keep == nil || keep(m) {
			out = append(out, *m)
		}
	}
	return out
}

// storyLocked builds the creative narrative line. Caller holds t.mu.
func (t *Tracker) storyLocked() string {
	if len(t.milestones) == 0 {
		return ""
	}

	completed := 0
	var nextUp *Milestone
	for _, m := range t.milestones {
		if m.Completed {
			completed++
		} else if nextUp == nil {
			nextUp = m
		}
	}

	parts := []string{fmt.Sprintf("Journey so far: %d milestones achieved", completed)}
	if nextUp != nil {
		parts = append(parts, fmt.Sprintf("Next up: %s - %s", nextUp.Name, nextUp.Description))
	}
	return strings.Join(parts, " | ")
}

// Report is the exported JSON report shape.
type Report struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Events      []Event           `json:"events"`
	Milestones  []Milestone       `json:"milestones"`
	Metrics     map[string]Metric `json:"metrics"`
	Summary     Summary           `json:"summary"`
}

// ExportReport writes the full feedback report as JSON. An empty path writes
// a timestamped file under the log dir. Returns the path written.
func (t *Tracker) ExportReport(path string) (string, error) {
	if path == "" {
		path = filepath.Join(t.cfg.LogDir,
			fmt.Sprintf("feedback_report_%s.json", time.Now().Format("20060102_150405")))
	}

	summary := t.ProgressSummary("")

	t.mu.RLock()
	report := Report{
		GeneratedAt: time.Now(),
		Events:      append([]Event(nil), t.events...),
		Milestones:  t.milestoneCopiesLocked(nil),
		Metrics:     t.metrics,
		Summary:     summary,
	}
	t.mu.RUnlock()

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding feedback report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating report dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing feedback report: %w", err)
	}
	return path, nil
}

// Events returns a copy of all recorded events.
func (t *Tracker) Events() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Event(nil), t.events...)
}

// Milestones returns a copy of all milestones.
func (t *Tracker) Milestones() []Milestone {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.milestoneCopiesLocked(nil)
}

// Status reports the tracker's current state.
func (t *Tracker) Status() contracts.Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return contracts.Status{
		"enabled":          t.enabled,
		"initialized":      t.initialized,
		"events_count":     len(t.events),
		"milestones_count": len(t.milestones),
		"metrics_count":    len(t.metrics),
		"log_dir":          t.cfg.LogDir,
	}
}

// Cleanup releases tracker resources.
func (t *Tracker) Cleanup() error {
	t.mu.Lock()
	t.initialized = false
	t.mu.Unlock()
	return nil
}

// Enabled reports whether the component is enabled.
func (t *Tracker) Enabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// SetEnabled enables or disables the component.
func (t *Tracker) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}
