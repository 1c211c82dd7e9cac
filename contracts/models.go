package contracts

// ExecutionResult is the outcome of a single pipeline run. Errors are data:
// a run never panics out of the executor, callers inspect Success and the
// task lists to know what happened.
//
// Exactly one of the two error carriers is populated on failure paths:
// Errors holds pre-run validation messages (the run was aborted wholesale,
// no task executed), Error holds a manager-level lookup failure such as an
// unknown pipeline name.
type ExecutionResult struct {
	Success        bool     `json:"success"`
	CompletedTasks []string `json:"completed_tasks"`
	FailedTasks    []string `json:"failed_tasks"`
	ExecutionOrder []string `json:"execution_order"`
	Context        Context  `json:"context,omitempty"`
	Errors         []string `json:"errors,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// TaskSnapshot is an immutable copy of a task's state, safe to serialize in
// status reports and API responses.
type TaskSnapshot struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Dependencies []string       `json:"dependencies"`
	Status       TaskStatus     `json:"status"`
	Result       any            `json:"result,omitempty"`
	Error        string         `json:"error,omitempty"`
	StartedAt    string         `json:"started_at,omitempty"`
	CompletedAt  string         `json:"completed_at,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}
