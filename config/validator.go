package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Validator validates project configurations.
type Validator struct{}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate performs comprehensive validation of a ProjectConfig.
// Returns nil if valid, or an error describing the first validation failure.
func (v *Validator) Validate(cfg *ProjectConfig) error {
	if cfg == nil {
		return ErrConfigEmpty
	}

	if cfg.Project.Name == "" {
		return ErrProjectNameEmpty
	}

	pipelineNames := make(map[string]bool)
	for i, p := range cfg.Pipelines {
		if p.Name == "" {
			return fmt.Errorf("pipeline[%d]: %w", i, ErrPipelineNameEmpty)
		}
		if pipelineNames[p.Name] {
			return fmt.Errorf("pipeline.name=%s: %w", p.Name, ErrPipelineNameDuplicate)
		}
		pipelineNames[p.Name] = true

		if err := v.validatePipeline(p); err != nil {
			return fmt.Errorf("pipeline %s: %w", p.Name, err)
		}
	}

	return nil
}

// validatePipeline checks one pipeline's tasks, dependency graph and schedule.
func (v *Validator) validatePipeline(p PipelineConfig) error {
	if len(p.Tasks) == 0 {
		return ErrNoTasks
	}

	// 1. Validate each task has name and command, collect name set
	taskNames := make(map[string]bool)
	for i, task := range p.Tasks {
		if task.Name == "" {
			return fmt.Errorf("task[%d]: %w", i, ErrTaskNameEmpty)
		}
		if taskNames[task.Name] {
			return fmt.Errorf("task.name=%s: %w", task.Name, ErrTaskNameDuplicate)
		}
		taskNames[task.Name] = true

		if task.Command == "" {
			return fmt.Errorf("task.name=%s: %w", task.Name, ErrTaskCommandEmpty)
		}
	}

	// 2. Validate depends_on references sibling tasks
	for _, task := range p.Tasks {
		for _, dep := range task.DependsOn {
			if !taskNames[dep] {
				return fmt.Errorf("task.name=%s depends_on=%s: %w",
					task.Name, dep, ErrDependencyNotFound)
			}
		}
	}

	// 3. Validate no cycles (DFS with color marking)
	if err := v.detectCycle(p.Tasks); err != nil {
		return err
	}

	// 4. Validate schedule is a standard cron expression
	if p.Schedule != "" {
		if _, err := cron.ParseStandard(p.Schedule); err != nil {
			return fmt.Errorf("schedule=%q: %w", p.Schedule, ErrScheduleInvalid)
		}
	}

	return nil
}

// detectCycle uses DFS with color marking to detect cycles in dependencies.
// Colors: 0=white (unvisited), 1=gray (visiting), 2=black (visited)
func (v *Validator) detectCycle(tasks []TaskConfig) error {
	// Build adjacency list from DependsOn: dep -> []taskName (forward edges)
	adjacency := make(map[string][]string)
	for _, task := range tasks {
		if _, exists := adjacency[task.Name]; !exists {
			adjacency[task.Name] = []string{}
		}
	}
	for _, task := range tasks {
		for _, dep := range task.DependsOn {
			adjacency[dep] = append(adjacency[dep], task.Name)
		}
	}

	colors := make(map[string]int)
	for _, task := range tasks {
		colors[task.Name] = 0 // white
	}

	for _, task := range tasks {
		if colors[task.Name] == 0 {
			if v.hasCycle(task.Name, colors, adjacency) {
				return fmt.Errorf("starting from task.name=%s: %w", task.Name, ErrCycleDetected)
			}
		}
	}

	return nil
}

// hasCycle performs DFS to detect cycles.
func (v *Validator) hasCycle(node string, colors map[string]int, adj map[string][]string) bool {
	colors[node] = 1 // gray (visiting)

	for _, next := range adj[node] {
		if colors[next] == 1 { // back edge to gray node
			return true
		}
		if colors[next] == 0 { // white (unvisited)
			if v.hasCycle(next, colors, adj) {
				return true
			}
		}
		// black (visited) - skip
	}

	colors[node] = 2 // black (visited)
	return false
}
