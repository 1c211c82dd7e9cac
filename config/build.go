package config

import (
	"github.com/devflowhq/devflow/internal/pipeline"
)

// Build registers every pipeline declared in cfg on the manager. Tasks become
// CommandRunner-backed pipeline tasks. Pipelines already registered under the
// same name are replaced, which makes Build safe for config reloads.
func Build(m *pipeline.Manager, cfg *ProjectConfig) {
	for _, pc := range cfg.Pipelines {
		p := m.CreatePipeline(pc.Name, pc.Description)
		for _, tc := range pc.Tasks {
			task := pipeline.NewTask(tc.Name, &pipeline.CommandRunner{
				Command: tc.Command,
				Dir:     tc.Dir,
				Env:     tc.Env,
				StoreAs: tc.StoreAs,
			})
			task.WithDescription(tc.Description)
			task.WithDependencies(tc.DependsOn...)
			for k, v := range tc.Metadata {
				task.WithMetadata(k, v)
			}
			p.AddTask(task)
		}
	}
}

// Scheduled returns the pipelines that carry a cron schedule, keyed by
// pipeline name.
func Scheduled(cfg *ProjectConfig) map[string]string {
	out := make(map[string]string)
	for _, pc := range cfg.Pipelines {
		if pc.Schedule != "" {
			out[pc.Name] = pc.Schedule
		}
	}
	return out
}
