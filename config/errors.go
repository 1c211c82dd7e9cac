package config

import "errors"

// Sentinel errors for project configuration validation.
var (
	// ErrConfigEmpty is returned when the config data is empty (zero bytes).
	ErrConfigEmpty = errors.New("project configuration is empty")

	// ErrProjectNameEmpty is returned when project.name is empty.
	ErrProjectNameEmpty = errors.New("project.name is required")

	// ErrPipelineNameEmpty is returned when a pipeline has an empty name.
	ErrPipelineNameEmpty = errors.New("pipeline.name is required")

	// ErrPipelineNameDuplicate is returned when two pipelines share a name.
	ErrPipelineNameDuplicate = errors.New("duplicate pipeline.name")

	// ErrNoTasks is returned when a pipeline declares no tasks.
	ErrNoTasks = errors.New("pipeline.tasks must not be empty")

	// ErrTaskNameEmpty is returned when a task has an empty name.
	ErrTaskNameEmpty = errors.New("task.name is required")

	// ErrTaskNameDuplicate is returned when two tasks in one pipeline share a name.
	ErrTaskNameDuplicate = errors.New("duplicate task.name")

	// ErrTaskCommandEmpty is returned when a task has an empty command.
	ErrTaskCommandEmpty = errors.New("task.command is required")

	// ErrDependencyNotFound is returned when depends_on references a task
	// that is not in the same pipeline.
	ErrDependencyNotFound = errors.New("depends_on references unknown task name")

	// ErrCycleDetected is returned when a cycle is detected in task dependencies.
	ErrCycleDetected = errors.New("cycle detected in task dependencies")

	// ErrScheduleInvalid is returned when pipeline.schedule is not a valid
	// cron expression.
	ErrScheduleInvalid = errors.New("pipeline.schedule is not a valid cron expression")
)
