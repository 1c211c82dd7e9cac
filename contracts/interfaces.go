package contracts

// =============================================================================
// Task Execution Interfaces
// =============================================================================

// Runner is the unit of work a task wraps. Implementations receive the run's
// shared context and may mutate it; mutations are visible to every task that
// runs later in the same pipeline run.
//
// Runners are expected to be blocking, finite calls. Execution is
// single-threaded: the pipeline never invokes two runners concurrently.
type Runner interface {
	// Run performs the work and returns its result, or an error describing
	// why the task failed.
	Run(rc Context) (any, error)
}

// RunnerFunc adapts a plain function to the Runner interface.
type RunnerFunc func(rc Context) (any, error)

// Run implements Runner.
func (f RunnerFunc) Run(rc Context) (any, error) {
	return f(rc)
}

// =============================================================================
// Component Protocol
// =============================================================================

// Component is the lifecycle protocol every devflow subsystem implements.
// A component is constructed disabled-agnostic (enabled by default), then
// initialized once, validated on demand, and cleaned up on shutdown.
type Component interface {
	// Name returns the component's registry name.
	Name() string

	// Initialize prepares the component for use (creating directories,
	// opening stores). Safe to call once; returns an error on failure.
	Initialize() error

	// Validate checks the component's configuration and current state.
	Validate() error

	// Status reports the component's current state. Always includes the
	// "enabled" and "initialized" keys.
	Status() Status

	// Cleanup releases component resources.
	Cleanup() error

	// Enabled reports whether the component is enabled.
	Enabled() bool

	// SetEnabled enables or disables the component.
	SetEnabled(enabled bool)
}

// =============================================================================
// Collaborator Interfaces
// =============================================================================

// Recorder receives progress events from pipeline execution. The feedback
// tracker implements it; the pipeline manager only depends on this interface
// so the core stays decoupled from how events are rendered or persisted.
type Recorder interface {
	// LogEvent records a progress event. Level is one of
	// "info", "warning", "error", "success".
	LogEvent(message, level, category string, metadata map[string]any)
}
