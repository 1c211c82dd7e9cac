package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devflowhq/devflow/contracts"
)

func TestManager_CreateGetDelete(t *testing.T) {
	m := NewManager()

	created := m.CreatePipeline("build", "build the project")
	got, ok := m.GetPipeline("build")
	require.True(t, ok)
	assert.Same(t, created, got)

	// Last write wins on re-creation.
	replaced := m.CreatePipeline("build", "rebuilt")
	got, _ = m.GetPipeline("build")
	assert.Same(t, replaced, got)
	assert.Equal(t, []string{"build"}, m.ListPipelines())

	assert.True(t, m.DeletePipeline("build"))
	assert.False(t, m.DeletePipeline("build"))
	_, ok = m.GetPipeline("build")
	assert.False(t, ok)
}

func TestManager_ListPipelines_RegistrationOrder(t *testing.T) {
	m := NewManager()
	m.CreatePipeline("zeta", "")
	m.CreatePipeline("alpha", "")
	m.CreatePipeline("mid", "")

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, m.ListPipelines())
}

func TestManager_ExecutePipeline_Unknown(t *testing.T) {
	m := NewManager()

	result := m.ExecutePipeline("nope", nil)

	assert.False(t, result.Success)
	assert.Equal(t, "Pipeline not found: nope", result.Error)
	// Distinct shape from a validation failure: no Errors list.
	assert.Empty(t, result.Errors)
}

func TestManager_ExecutePipeline(t *testing.T) {
	m := NewManager()
	p := m.CreatePipeline("deploy", "")
	p.AddTask(NewTaskFunc("ship", func(rc contracts.Context) (any, error) {
		rc["shipped"] = true
		return "done", nil
	}))

	result := m.ExecutePipeline("deploy", contracts.Context{"env": "prod"})

	require.True(t, result.Success)
	assert.Equal(t, []string{"ship"}, result.CompletedTasks)
	assert.Equal(t, true, result.Context["shipped"])
	assert.Equal(t, "prod", result.Context["env"])
}

type recordingRecorder struct {
	messages []string
	levels   []string
}

func (r *recordingRecorder) LogEvent(message, level, category string, metadata map[string]any) {
	r.messages = append(r.messages, message)
	r.levels = append(r.levels, level)
}

func TestManager_ExecutePipeline_ReportsToRecorder(t *testing.T) {
	rec := &recordingRecorder{}
	m := NewManager()
	m.SetRecorder(rec)

	p := m.CreatePipeline("ok", "")
	p.AddTask(noop("a"))
	m.ExecutePipeline("ok", nil)

	q := m.CreatePipeline("bad", "")
	q.AddTask(failing("a"))
	m.ExecutePipeline("bad", nil)

	require.Len(t, rec.messages, 2)
	assert.Equal(t, "Pipeline completed: ok", rec.messages[0])
	assert.Equal(t, "success", rec.levels[0])
	assert.Equal(t, "Pipeline failed: bad", rec.messages[1])
	assert.Equal(t, "error", rec.levels[1])
}

func TestManager_ComponentLifecycle(t *testing.T) {
	m := NewManager()

	assert.Equal(t, "pipeline", m.Name())
	assert.True(t, m.Enabled())

	require.NoError(t, m.Initialize())
	status := m.Status()
	assert.Equal(t, true, status["initialized"])
	assert.Equal(t, true, status["enabled"])
	assert.Equal(t, 0, status["pipelines_count"])

	m.SetEnabled(false)
	assert.False(t, m.Enabled())

	require.NoError(t, m.Cleanup())
	assert.Equal(t, false, m.Status()["initialized"])
}

func TestManager_Validate(t *testing.T) {
	m := NewManager()
	ok := m.CreatePipeline("ok", "")
	ok.AddTask(noop("a"))
	require.NoError(t, m.Validate())

	bad := m.CreatePipeline("bad", "")
	bad.AddTask(noop("a", "ghost"))

	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline bad")
	assert.Contains(t, err.Error(), "missing task 'ghost'")
}

func TestManager_Status_IncludesPipelines(t *testing.T) {
	m := NewManager()
	p := m.CreatePipeline("report", "")
	p.AddTask(noop("a"))

	status := m.Status()
	pipelines, ok := status["pipelines"].(map[string]contracts.Status)
	require.True(t, ok)
	require.Contains(t, pipelines, "report")
	assert.Equal(t, 1, pipelines["report"]["total_tasks"])
}

// Interface conformance.
var _ contracts.Component = (*Manager)(nil)
