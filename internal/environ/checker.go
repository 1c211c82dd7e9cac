// Package environ validates the developer environment: Go toolchain
// version, required system tools, environment variables and project
// directories, with automatic fixing where possible.
package environ

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/devflowhq/devflow/contracts"
	"github.com/devflowhq/devflow/internal/ux"
)

// Config holds environment check requirements.
type Config struct {
	// GoVersion is the minimum Go release required, e.g. "1.22".
	// Empty disables the check.
	GoVersion string

	// RequiredTools are executables that must be on PATH.
	RequiredTools []string

	// RequiredEnv are environment variables that must be set and non-empty.
	RequiredEnv []string

	// Directories are paths that must exist and be directories.
	Directories []string
}

// Checker runs environment checks and reports what is missing.
//
// Thread-safety: all operations are safe for concurrent use.
type Checker struct {
	name string
	cfg  Config

	mu           sync.RWMutex
	checksPassed map[string]bool
	issues       []string

	initialized bool
	enabled     bool
}

// New creates an environment checker with the given requirements.
func New(cfg Config) *Checker {
	return &Checker{
		name:         "environment",
		cfg:          cfg,
		checksPassed: make(map[string]bool),
		enabled:      true,
	}
}

// Name returns the component name.
func (c *Checker) Name() string { return c.name }

// Initialize marks the checker ready. No resources are acquired.
func (c *Checker) Initialize() error {
	c.mu.Lock()
	c.initialized = true
	c.mu.Unlock()
	return nil
}

// Validate runs every configured check and records the results. It returns
// nil only when all checks pass; the individual issues are available through
// Issues and Report.
func (c *Checker) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checksPassed = make(map[string]bool)
	c.issues = nil

	c.checksPassed["go_version"] = c.checkGoVersionLocked()
	c.checksPassed["tools"] = c.checkToolsLocked()
	c.checksPassed["env_vars"] = c.checkEnvLocked()
	c.checksPassed["directories"] = c.checkDirectoriesLocked()

	for _, passed := range c.checksPassed {
		if !passed {
			return fmt.Errorf("%d issue(s) found: %w", len(c.issues), contracts.ErrInvalidInput)
		}
	}
	return nil
}

func (c *Checker) checkGoVersionLocked() bool {
	if c.cfg.GoVersion == "" {
		return true
	}
	current := strings.TrimPrefix(runtime.Version(), "go")
	if compareVersions(current, c.cfg.GoVersion) < 0 {
		c.issues = append(c.issues,
			fmt.Sprintf("Go version %s is below required %s", current, c.cfg.GoVersion))
		return false
	}
	return true
}

func (c *Checker) checkToolsLocked() bool {
	ok := true
	for _, tool := range c.cfg.RequiredTools {
		if _, err := exec.LookPath(tool); err != nil {
			c.issues = append(c.issues, fmt.Sprintf("Required tool not found: %s", tool))
			ok = false
		}
	}
	return ok
}

func (c *Checker) checkEnvLocked() bool {
	ok := true
	for _, key := range c.cfg.RequiredEnv {
		if os.Getenv(key) == "" {
			c.issues = append(c.issues, fmt.Sprintf("Required environment variable not set: %s", key))
			ok = false
		}
	}
	return ok
}

func (c *Checker) checkDirectoriesLocked() bool {
	ok := true
	for _, dir := range c.cfg.Directories {
		info, err := os.Stat(dir)
		switch {
		case err != nil:
			c.issues = append(c.issues, fmt.Sprintf("Required directory not found: %s", dir))
			ok = false
		case !info.IsDir():
			c.issues = append(c.issues, fmt.Sprintf("Path is not a directory: %s", dir))
			ok = false
		}
	}
	return ok
}

// compareVersions compares dotted numeric versions, returning -1, 0 or 1.
// Non-numeric segments (release candidates, betas) compare as zero.
func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var av, bv int
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// AutoFix attempts to repair fixable issues. Currently it creates missing
// directories. The returned map records each attempted fix and whether it
// succeeded.
func (c *Checker) AutoFix() map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	fixes := make(map[string]bool)
	for _, dir := range c.cfg.Directories {
		if _, err := os.Stat(dir); err == nil {
			continue
		}
		key := "create_dir_" + dir
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fixes[key] = false
			c.issues = append(c.issues, fmt.Sprintf("Failed to create directory %s: %v", dir, err))
			continue
		}
		fixes[key] = true
	}
	return fixes
}

// Issues returns a copy of the issues recorded by the last Validate.
func (c *Checker) Issues() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.issues...)
}

// ChecksPassed returns a copy of the per-check results of the last Validate.
func (c *Checker) ChecksPassed() map[string]bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]bool, len(c.checksPassed))
	for k, v := range c.checksPassed {
		out[k] = v
	}
	return out
}

// Report renders a human-readable check report.
func (c *Checker) Report() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lines := []string{"Environment Check Report", strings.Repeat("=", 40)}

	// Stable output order.
	for _, check := range []string{"go_version", "tools", "env_vars", "directories"} {
		passed, ran := c.checksPassed[check]
		if !ran {
			continue
		}
		icon := ux.IconSuccess
		verdict := "PASS"
		if !passed {
			icon = ux.IconError
			verdict = "FAIL"
		}
		lines = append(lines, fmt.Sprintf("%s %s - %s", icon.Render(), verdict, check))
	}

	if len(c.issues) > 0 {
		lines = append(lines, "", "Issues Found:")
		for _, issue := range c.issues {
			lines = append(lines, "  - "+issue)
		}
	} else {
		lines = append(lines, "", "No issues found!")
	}
	return strings.Join(lines, "\n")
}

// Status reports the checker's current state.
func (c *Checker) Status() contracts.Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	checks := make(map[string]bool, len(c.checksPassed))
	for k, v := range c.checksPassed {
		checks[k] = v
	}
	return contracts.Status{
		"enabled":       c.enabled,
		"initialized":   c.initialized,
		"checks_passed": checks,
		"issues":        append([]string(nil), c.issues...),
		"go_version":    strings.TrimPrefix(runtime.Version(), "go"),
	}
}

// Cleanup releases checker resources.
func (c *Checker) Cleanup() error {
	c.mu.Lock()
	c.initialized = false
	c.mu.Unlock()
	return nil
}

// Enabled reports whether the component is enabled.
func (c *Checker) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// SetEnabled enables or disables the component.
func (c *Checker) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}
