package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/devflowhq/devflow/config"
	"github.com/devflowhq/devflow/internal/contextstore"
	"github.com/devflowhq/devflow/internal/environ"
	"github.com/devflowhq/devflow/internal/feedback"
	"github.com/devflowhq/devflow/internal/pipeline"
	"github.com/devflowhq/devflow/internal/ux"
	"github.com/devflowhq/devflow/project"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "devflow",
		Short:         "Developer workflow automation: pipelines, context and feedback",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultFileName,
		"path to the project configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"enable debug logging")

	cmd.AddCommand(
		newInitCmd(opts),
		newCheckCmd(),
		newStatusCmd(opts),
		newRunCmd(opts),
		newServeCmd(opts),
		newFeedbackCmd(opts),
		newContextCmd(opts),
	)
	return cmd
}

// appContext is the wired set of components a loaded project provides.
type appContext struct {
	cfg     *config.ProjectConfig
	proj    *project.Project
	manager *pipeline.Manager
	tracker *feedback.Tracker
	store   *contextstore.Store
}

// loadApp loads the project configuration and wires the standard components:
// pipeline manager (with pipelines built from config), feedback tracker and
// context store.
func loadApp(opts *rootOptions) (*appContext, error) {
	proj, cfg, err := project.LoadConfig(opts.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no project configuration at %s (run 'devflow init' first)", opts.configPath)
		}
		return nil, err
	}

	manager := pipeline.NewManager()
	tracker := feedback.New(feedback.Config{Console: opts.verbose})
	store := contextstore.New(contextstore.DefaultConfig())

	manager.SetRecorder(tracker)
	config.Build(manager, cfg)

	proj.AddComponent(manager)
	proj.AddComponent(tracker)
	proj.AddComponent(store)
	proj.AddComponent(environ.New(environ.Config{}))
	proj.ApplyComponentConfig(cfg)

	if err := proj.Initialize(); err != nil {
		return nil, err
	}

	return &appContext{
		cfg:     cfg,
		proj:    proj,
		manager: manager,
		tracker: tracker,
		store:   store,
	}, nil
}

// close cleans up the wired components.
func (a *appContext) close() {
	if err := a.proj.Cleanup(); err != nil {
		slog.Warn("cleanup failed", "error", err)
	}
}

// fail prints a styled error and returns it so the process exits non-zero.
func fail(cmd *cobra.Command, format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", ux.IconError.Render(), err)
	return err
}
