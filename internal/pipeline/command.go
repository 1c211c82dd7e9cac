package pipeline

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/devflowhq/devflow/contracts"
)

// CommandRunner executes a shell command as task work. It is the bridge from
// declarative pipeline definitions to executable tasks: the command's
// combined output becomes the task result, and is additionally written into
// the shared run context when StoreAs is set.
//
// There is deliberately no timeout: runners are blocking, finite calls by
// contract, and a hung command hangs the pipeline just like any other runner.
type CommandRunner struct {
	// Command is the shell command line, run via "sh -c".
	Command string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env holds extra environment variables, merged over the process env.
	Env map[string]string

	// StoreAs, when non-empty, names the context key the trimmed output is
	// stored under for downstream tasks.
	StoreAs string
}

// Run implements contracts.Runner.
func (r *CommandRunner) Run(rc contracts.Context) (any, error) {
	if strings.TrimSpace(r.Command) == "" {
		return nil, fmt.Errorf("command runner: %w", contracts.ErrInvalidInput)
	}

	cmd := exec.Command("sh", "-c", r.Command)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		env := os.Environ()
		for k, v := range r.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}

	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		if output != "" {
			return nil, fmt.Errorf("command %q failed: %v: %s", r.Command, err, output)
		}
		return nil, fmt.Errorf("command %q failed: %w", r.Command, err)
	}

	if r.StoreAs != "" {
		rc[r.StoreAs] = output
	}
	return output, nil
}
