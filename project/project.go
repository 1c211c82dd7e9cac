// Package project coordinates devflow components under one roof: a named
// registry with lifecycle management (initialize, validate, cleanup) and
// YAML configuration save/load.
package project

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/devflowhq/devflow/config"
	"github.com/devflowhq/devflow/contracts"
	"github.com/devflowhq/devflow/internal/audit"
)

// Project manages a set of components and provides a unified interface over
// their lifecycles. Components are initialized, validated and cleaned up in
// registration order.
//
// Thread-safety: the project assumes single-threaded use, matching the
// execution model of the pipeline subsystem.
type Project struct {
	Name string
	Dir  string

	components map[string]contracts.Component
	order      []string
	metadata   map[string]any

	logger      *slog.Logger
	initialized bool
}

// New creates a project rooted at dir. An empty dir means the current
// directory.
func New(name, dir string) *Project {
	if dir == "" {
		dir = "."
	}
	return &Project{
		Name:       name,
		Dir:        dir,
		components: make(map[string]contracts.Component),
		metadata: map[string]any{
			"name":       name,
			"created_at": time.Now().Format(time.RFC3339),
			"version":    "0.1.0",
		},
		logger: slog.Default(),
	}
}

// AddComponent registers a component under its own name, replacing any
// previous component of the same name.
func (p *Project) AddComponent(c contracts.Component) {
	name := c.Name()
	if _, exists := p.components[name]; !exists {
		p.order = append(p.order, name)
	}
	p.components[name] = c
}

// RemoveComponent cleans up and removes the named component. Unknown names
// are ignored.
func (p *Project) RemoveComponent(name string) {
	c, exists := p.components[name]
	if !exists {
		return
	}
	if err := c.Cleanup(); err != nil {
		p.logger.Warn("component cleanup failed", "component", name, "error", err)
	}
	delete(p.components, name)
	for i, n := range p.order {
		if n == name {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Component returns the component registered under name.
func (p *Project) Component(name string) (contracts.Component, bool) {
	c, ok := p.components[name]
	return c, ok
}

// Components returns component names in registration order.
func (p *Project) Components() []string {
	return append([]string(nil), p.order...)
}

// Initialize initializes every component. All components are attempted even
// when some fail; the joined error reports every failure. Initializing an
// already initialized project is a no-op.
func (p *Project) Initialize() error {
	if p.initialized {
		return nil
	}

	var errs []error
	for _, name := range p.order {
		if err := p.components[name].Initialize(); err != nil {
			p.logger.Error("component initialization failed", "component", name, "error", err)
			errs = append(errs, fmt.Errorf("initializing %s: %w", name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	p.initialized = true
	audit.Log("project_initialized", "project", p.Name, "components", len(p.components))
	return nil
}

// Validate validates every component and returns the per-component results.
func (p *Project) Validate() map[string]error {
	results := make(map[string]error, len(p.components))
	for _, name := range p.order {
		results[name] = p.components[name].Validate()
	}
	return results
}

// Status reports the project state including every component's status.
func (p *Project) Status() contracts.Status {
	components := make(map[string]contracts.Status, len(p.components))
	for name, c := range p.components {
		components[name] = c.Status()
	}
	return contracts.Status{
		"project":     p.Name,
		"initialized": p.initialized,
		"components":  components,
		"metadata":    p.metadata,
	}
}

// Initialized reports whether Initialize has completed successfully.
func (p *Project) Initialized() bool { return p.initialized }

// Metadata returns the project's metadata map.
func (p *Project) Metadata() map[string]any { return p.metadata }

// SaveConfig writes the project configuration as YAML. An empty path writes
// to the default file under the project directory.
func (p *Project) SaveConfig(path string) error {
	if path == "" {
		path = filepath.Join(p.Dir, config.DefaultFileName)
	}

	cfg := &config.ProjectConfig{
		Project: config.ProjectMeta{
			Name:     p.Name,
			Metadata: p.metadata,
		},
		Components: make(map[string]config.ComponentConfig, len(p.components)),
	}
	for name, c := range p.components {
		enabled := c.Enabled()
		cfg.Components[name] = config.ComponentConfig{
			Type:    name,
			Enabled: &enabled,
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	return config.NewLoader().SaveToFile(cfg, path)
}

// LoadConfig creates a project from a configuration file. The project
// directory is the config file's directory. Components are not
// reconstructed; callers register them and the loaded component settings
// (enabled flags) are applied as they arrive.
func LoadConfig(path string) (*Project, *config.ProjectConfig, error) {
	cfg, err := config.NewLoader().LoadFromFile(path)
	if err != nil {
		return nil, nil, err
	}

	p := New(cfg.Project.Name, filepath.Dir(path))
	for k, v := range cfg.Project.Metadata {
		p.metadata[k] = v
	}
	return p, cfg, nil
}

// ApplyComponentConfig applies the loaded enabled flags to registered
// components. Settings for unregistered components are ignored.
func (p *Project) ApplyComponentConfig(cfg *config.ProjectConfig) {
	for name, cc := range cfg.Components {
		if c, ok := p.components[name]; ok {
			c.SetEnabled(cc.IsEnabled())
		}
	}
}

// Cleanup cleans up every component in reverse registration order.
func (p *Project) Cleanup() error {
	var errs []error
	for i := len(p.order) - 1; i >= 0; i-- {
		name := p.order[i]
		if err := p.components[name].Cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("cleaning up %s: %w", name, err))
		}
	}
	p.initialized = false
	return errors.Join(errs...)
}
