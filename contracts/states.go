package contracts

// TaskStatus represents the lifecycle state of a pipeline task.
// A task transitions at most once per run: Running, then Completed or Failed.
// Tasks that can never become runnable are swept to Skipped.
type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskRunning
	TaskCompleted
	TaskFailed
	TaskSkipped
)

func (s TaskStatus) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskRunning:
		return "running"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	case TaskSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so statuses render as their
// lowercase names in JSON status reports.
func (s TaskStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, accepting the lowercase
// names produced by MarshalText. Unknown names map to TaskPending.
func (s *TaskStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "running":
		*s = TaskRunning
	case "completed":
		*s = TaskCompleted
	case "failed":
		*s = TaskFailed
	case "skipped":
		*s = TaskSkipped
	default:
		*s = TaskPending
	}
	return nil
}

// AllTaskStatuses lists every status in declaration order. Used by status
// reports that count tasks per state.
func AllTaskStatuses() []TaskStatus {
	return []TaskStatus{TaskPending, TaskRunning, TaskCompleted, TaskFailed, TaskSkipped}
}
