// Package config provides project configuration loading, validation and
// pipeline construction from YAML definitions.
package config

// ProjectConfig is the root configuration structure, normally loaded from
// devflow.yaml.
type ProjectConfig struct {
	Project    ProjectMeta                `yaml:"project"`
	Components map[string]ComponentConfig `yaml:"components,omitempty"`
	Pipelines  []PipelineConfig           `yaml:"pipelines,omitempty"`
}

// ProjectMeta identifies the project.
type ProjectMeta struct {
	Name     string         `yaml:"name"`
	Version  string         `yaml:"version,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

// ComponentConfig declares a managed component and its settings.
type ComponentConfig struct {
	Type    string         `yaml:"type,omitempty"`
	Enabled *bool          `yaml:"enabled,omitempty"`
	Config  map[string]any `yaml:"config,omitempty"`
}

// IsEnabled reports whether the component is enabled. Absent means enabled.
func (c ComponentConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// PipelineConfig declares one pipeline and its tasks.
type PipelineConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Schedule is an optional standard cron expression. Scheduled pipelines
	// run automatically while the scheduler is started.
	Schedule string       `yaml:"schedule,omitempty"`
	Tasks    []TaskConfig `yaml:"tasks"`
}

// TaskConfig declares one shell-command task inside a pipeline.
type TaskConfig struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	DependsOn   []string          `yaml:"depends_on,omitempty"`
	Command     string            `yaml:"command"`
	Dir         string            `yaml:"dir,omitempty"`
	Env         map[string]string `yaml:"env,omitempty"`
	// StoreAs names the context key the command output is stored under.
	StoreAs  string         `yaml:"store_as,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}
