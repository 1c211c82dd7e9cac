package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devflowhq/devflow/contracts"
	"github.com/devflowhq/devflow/internal/pipeline"
)

func TestBuild_RegistersPipelines(t *testing.T) {
	cfg := &ProjectConfig{
		Project: ProjectMeta{Name: "demo"},
		Pipelines: []PipelineConfig{
			{
				Name:        "build",
				Description: "build pipeline",
				Tasks: []TaskConfig{
					{Name: "compile", Command: "echo compiled", StoreAs: "compile_output"},
					{Name: "test", Command: "echo tested", DependsOn: []string{"compile"}},
				},
			},
			{
				Name:  "deploy",
				Tasks: []TaskConfig{{Name: "ship", Command: "echo shipped"}},
			},
		},
	}
	require.NoError(t, NewValidator().Validate(cfg))

	m := pipeline.NewManager()
	Build(m, cfg)

	assert.Equal(t, []string{"build", "deploy"}, m.ListPipelines())

	p, ok := m.GetPipeline("build")
	require.True(t, ok)
	assert.Equal(t, []string{"compile", "test"}, p.TaskNames())

	task, ok := p.Task("test")
	require.True(t, ok)
	assert.Equal(t, []string{"compile"}, task.Dependencies)
}

func TestBuild_ExecutesCommands(t *testing.T) {
	cfg := &ProjectConfig{
		Project: ProjectMeta{Name: "demo"},
		Pipelines: []PipelineConfig{
			{
				Name: "greet",
				Tasks: []TaskConfig{
					{Name: "hello", Command: "echo hello", StoreAs: "greeting"},
					{Name: "reply", Command: "echo world", DependsOn: []string{"hello"}},
				},
			},
		},
	}

	m := pipeline.NewManager()
	Build(m, cfg)

	result := m.ExecutePipeline("greet", contracts.Context{})
	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, []string{"hello", "reply"}, result.ExecutionOrder)
	assert.Equal(t, "hello", result.Context["greeting"])
}

func TestBuild_ReloadReplacesPipeline(t *testing.T) {
	m := pipeline.NewManager()

	Build(m, &ProjectConfig{
		Project: ProjectMeta{Name: "demo"},
		Pipelines: []PipelineConfig{
			{Name: "build", Tasks: []TaskConfig{{Name: "old", Command: "echo old"}}},
		},
	})
	Build(m, &ProjectConfig{
		Project: ProjectMeta{Name: "demo"},
		Pipelines: []PipelineConfig{
			{Name: "build", Tasks: []TaskConfig{{Name: "new", Command: "echo new"}}},
		},
	})

	assert.Equal(t, []string{"build"}, m.ListPipelines())
	p, _ := m.GetPipeline("build")
	assert.Equal(t, []string{"new"}, p.TaskNames())
}

func TestScheduled(t *testing.T) {
	cfg := &ProjectConfig{
		Project: ProjectMeta{Name: "demo"},
		Pipelines: []PipelineConfig{
			{Name: "nightly", Schedule: "0 2 * * *", Tasks: []TaskConfig{cmd("backup")}},
			{Name: "manual", Tasks: []TaskConfig{cmd("release")}},
		},
	}

	assert.Equal(t, map[string]string{"nightly": "0 2 * * *"}, Scheduled(cfg))
}
