package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o644))

	reloaded := make(chan *ProjectConfig, 1)
	w, err := NewWatcher(path, func(cfg *ProjectConfig) { reloaded <- cfg })
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	w.Start()

	updated := `
project:
  name: renamed
pipelines:
  - name: build
    tasks:
      - name: compile
        command: echo compiling
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "renamed", cfg.Project.Name)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

func TestWatcher_SkipsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o644))

	reloaded := make(chan *ProjectConfig, 1)
	w, err := NewWatcher(path, func(cfg *ProjectConfig) { reloaded <- cfg })
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	w.Start()

	// Invalid config: no project name. The callback must not fire.
	require.NoError(t, os.WriteFile(path, []byte("project:\n  version: \"2\"\n"), 0o644))

	select {
	case cfg := <-reloaded:
		t.Fatalf("unexpected reload with config %+v", cfg)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o644))

	reloaded := make(chan *ProjectConfig, 1)
	w, err := NewWatcher(path, func(cfg *ProjectConfig) { reloaded <- cfg })
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	w.Start()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	select {
	case <-reloaded:
		t.Fatal("unexpected reload for unrelated file")
	case <-time.After(500 * time.Millisecond):
	}
}
