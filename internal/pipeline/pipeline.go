package pipeline

import (
	"fmt"

	"github.com/devflowhq/devflow/contracts"
)

// Pipeline owns a set of tasks plus the dependency-aware execution algorithm
// and the shared run context.
//
// Task iteration follows insertion order: it is the committed tie-break among
// tasks that become runnable in the same wave, so runs are reproducible.
//
// Thread-safety: a Pipeline is single-threaded by design. Execute runs task
// runners strictly one after another, so the shared context needs no locking.
type Pipeline struct {
	Name        string
	Description string

	tasks map[string]*Task
	order []string // insertion order, the committed sibling tie-break

	executionOrder []string
	context        contracts.Context
}

// New creates an empty pipeline.
func New(name, description string) *Pipeline {
	return &Pipeline{
		Name:        name,
		Description: description,
		tasks:       make(map[string]*Task),
	}
}

// AddTask registers a task under its name. Re-adding an existing name
// replaces the task but keeps its original insertion position. No
// re-validation is triggered; call Validate before Execute.
func (p *Pipeline) AddTask(t *Task) {
	if _, exists := p.tasks[t.Name]; !exists {
		p.order = append(p.order, t.Name)
	}
	p.tasks[t.Name] = t
}

// RemoveTask deletes a task by name. Removing an unknown name is a no-op.
func (p *Pipeline) RemoveTask(name string) {
	if _, exists := p.tasks[name]; !exists {
		return
	}
	delete(p.tasks, name)
	for i, n := range p.order {
		if n == name {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Task returns the task registered under name.
func (p *Pipeline) Task(name string) (*Task, bool) {
	t, ok := p.tasks[name]
	return t, ok
}

// TaskNames returns task names in insertion order.
func (p *Pipeline) TaskNames() []string {
	return append([]string(nil), p.order...)
}

// Len returns the number of tasks.
func (p *Pipeline) Len() int {
	return len(p.tasks)
}

// Validate checks the dependency graph and returns one message per problem
// found. An empty result means the graph is a valid DAG over existing names.
//
// The cycle check runs a DFS from every task with a fresh visited set per
// start; O(V·(V+E)) but the graphs here are small.
func (p *Pipeline) Validate() []string {
	var errs []string

	for _, name := range p.order {
		if p.hasCircularDependency(name, map[string]bool{}) {
			errs = append(errs, fmt.Sprintf("circular dependency detected for task: %s", name))
		}
	}

	for _, name := range p.order {
		for _, dep := range p.tasks[name].Dependencies {
			if _, exists := p.tasks[dep]; !exists {
				errs = append(errs, fmt.Sprintf("task '%s' depends on missing task '%s'", name, dep))
			}
		}
	}

	return errs
}

// hasCircularDependency reports whether a dependency walk starting at name
// revisits a task already on the current path. The visited set is copied per
// branch so diamond-shaped graphs are not flagged.
func (p *Pipeline) hasCircularDependency(name string, visited map[string]bool) bool {
	if visited[name] {
		return true
	}
	visited[name] = true

	task, exists := p.tasks[name]
	if !exists {
		return false
	}

	for _, dep := range task.Dependencies {
		branch := make(map[string]bool, len(visited))
		for k := range visited {
			branch[k] = true
		}
		if p.hasCircularDependency(dep, branch) {
			return true
		}
	}

	return false
}

// Execute runs the pipeline to completion and returns the aggregated result.
//
// The algorithm is a breadth-by-readiness scheduler, not a strict topological
// sort: each round runs every currently satisfiable Pending task as one
// logical wave. Wave membership is computed from the state before any task in
// the wave ran, so a task never sees a sibling's completion mid-wave. A task
// whose ancestor failed is never satisfiable and is swept to Skipped once no
// further progress is possible.
//
// Validation failures abort the run wholesale: no task executes, not even
// independent ones. A task failure is caught locally; it marks that task
// Failed and excludes its dependents, but the run completes and returns full
// diagnostics.
//
// The context (initial, or a fresh map when nil) is shared by reference with
// every runner and is returned in the result. The recorded execution order
// resets at the start of each call.
func (p *Pipeline) Execute(initial contracts.Context) *contracts.ExecutionResult {
	if initial == nil {
		initial = make(contracts.Context)
	}
	p.context = initial
	p.executionOrder = nil

	if errs := p.Validate(); len(errs) > 0 {
		return &contracts.ExecutionResult{
			Success:        false,
			Errors:         errs,
			CompletedTasks: []string{},
			FailedTasks:    []string{},
			ExecutionOrder: []string{},
		}
	}

	completed := []string{}
	failed := []string{}
	completedSet := make(map[string]bool, len(p.tasks))

	for len(completed)+len(failed) < len(p.tasks) {
		// Wave membership: every Pending task whose dependencies are all
		// completed, in insertion order.
		var runnable []*Task
		for _, name := range p.order {
			t := p.tasks[name]
			if t.Status == contracts.TaskPending && t.CanRun(completedSet) {
				runnable = append(runnable, t)
			}
		}

		if len(runnable) == 0 {
			// Deadlock or unreachable tasks: everything still Pending
			// depends, directly or indirectly, on a task that failed.
			for _, name := range p.order {
				if t := p.tasks[name]; t.Status == contracts.TaskPending {
					t.Status = contracts.TaskSkipped
				}
			}
			break
		}

		for _, t := range runnable {
			if _, err := t.Execute(p.context); err != nil {
				failed = append(failed, t.Name)
				continue
			}
			completed = append(completed, t.Name)
			completedSet[t.Name] = true
			p.executionOrder = append(p.executionOrder, t.Name)
		}
	}

	return &contracts.ExecutionResult{
		Success:        len(failed) == 0,
		CompletedTasks: completed,
		FailedTasks:    failed,
		ExecutionOrder: append([]string{}, p.executionOrder...),
		Context:        p.context,
	}
}

// ExecutionOrder returns the task names in the order they completed during
// the most recent run.
func (p *Pipeline) ExecutionOrder() []string {
	return append([]string(nil), p.executionOrder...)
}

// Context returns the shared context from the most recent run (or the one
// currently in use).
func (p *Pipeline) Context() contracts.Context {
	return p.context
}

// Status reports the pipeline's current state, including per-status task
// counts and a snapshot of every task.
func (p *Pipeline) Status() contracts.Status {
	counts := make(map[string]int, len(contracts.AllTaskStatuses()))
	for _, s := range contracts.AllTaskStatuses() {
		counts[s.String()] = 0
	}
	tasks := make(map[string]contracts.TaskSnapshot, len(p.tasks))
	for name, t := range p.tasks {
		counts[t.Status.String()]++
		tasks[name] = t.Snapshot()
	}

	return contracts.Status{
		"name":            p.Name,
		"description":     p.Description,
		"total_tasks":     len(p.tasks),
		"status_counts":   counts,
		"execution_order": p.ExecutionOrder(),
		"tasks":           tasks,
	}
}
