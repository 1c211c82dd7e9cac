// Package pipeline implements the dependency-ordered task pipeline executor.
//
// A Pipeline owns a set of named Tasks, validates their dependency graph, and
// runs them to completion in readiness waves: at each round every currently
// satisfiable pending task executes (sequentially, as one logical wave).
// Tasks downstream of a failure never run and are swept to Skipped once no
// further progress is possible.
package pipeline

import (
	"time"

	"github.com/devflowhq/devflow/contracts"
)

// Task is a named, dependency-gated unit of work with mutable run state.
// A Task is owned exclusively by one Pipeline and is not safe for concurrent
// use; the executor drives it single-threaded.
type Task struct {
	Name         string
	Description  string
	Dependencies []string
	Metadata     map[string]any

	runner contracts.Runner

	// Mutable run state. Transitions at most once per pipeline run.
	Status      contracts.TaskStatus
	Result      any
	Err         string
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// NewTask creates a Pending task wrapping the given runner.
func NewTask(name string, runner contracts.Runner) *Task {
	return &Task{
		Name:     name,
		Metadata: map[string]any{},
		runner:   runner,
		Status:   contracts.TaskPending,
	}
}

// NewTaskFunc creates a Pending task from a plain function.
func NewTaskFunc(name string, fn func(rc contracts.Context) (any, error)) *Task {
	return NewTask(name, contracts.RunnerFunc(fn))
}

// WithDescription sets the task description and returns the task.
func (t *Task) WithDescription(desc string) *Task {
	t.Description = desc
	return t
}

// WithDependencies appends dependency task names and returns the task.
func (t *Task) WithDependencies(deps ...string) *Task {
	t.Dependencies = append(t.Dependencies, deps...)
	return t
}

// WithMetadata sets a metadata entry and returns the task.
func (t *Task) WithMetadata(key string, value any) *Task {
	t.Metadata[key] = value
	return t
}

// CanRun reports whether every dependency name is present in the completed
// set. Pure and idempotent: repeated calls with the same set yield the same
// answer. Dependencies naming tasks absent from the owning pipeline are a
// configuration error caught by Pipeline.Validate, not a runtime state.
func (t *Task) CanRun(completed map[string]bool) bool {
	for _, dep := range t.Dependencies {
		if !completed[dep] {
			return false
		}
	}
	return true
}

// Execute transitions the task to Running, invokes its runner with the shared
// context, and records the outcome. On success the return value is stored as
// the task result and the status becomes Completed. On failure the status
// becomes Failed, the error text is recorded, and the error is returned to
// the caller. The completion timestamp is recorded regardless of outcome.
func (t *Task) Execute(rc contracts.Context) (any, error) {
	t.Status = contracts.TaskRunning
	started := time.Now()
	t.StartedAt = &started

	defer func() {
		completed := time.Now()
		t.CompletedAt = &completed
	}()

	if t.runner == nil {
		t.Status = contracts.TaskFailed
		t.Err = contracts.ErrNilRunner.Error()
		return nil, contracts.ErrNilRunner
	}

	result, err := t.runner.Run(rc)
	if err != nil {
		t.Status = contracts.TaskFailed
		t.Err = err.Error()
		return nil, err
	}

	t.Result = result
	t.Status = contracts.TaskCompleted
	return result, nil
}

// Snapshot returns an immutable copy of the task's current state.
func (t *Task) Snapshot() contracts.TaskSnapshot {
	snap := contracts.TaskSnapshot{
		Name:         t.Name,
		Description:  t.Description,
		Dependencies: append([]string(nil), t.Dependencies...),
		Status:       t.Status,
		Result:       t.Result,
		Error:        t.Err,
		Metadata:     t.Metadata,
	}
	if t.StartedAt != nil {
		snap.StartedAt = t.StartedAt.Format(time.RFC3339Nano)
	}
	if t.CompletedAt != nil {
		snap.CompletedAt = t.CompletedAt.Format(time.RFC3339Nano)
	}
	return snap
}
