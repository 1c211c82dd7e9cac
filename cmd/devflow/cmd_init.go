package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devflowhq/devflow/config"
	"github.com/devflowhq/devflow/internal/ux"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init <name>",
		Short: "Scaffold a new devflow project configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			path := opts.configPath

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fail(cmd, "%s already exists (use --force to overwrite)", path)
				}
			}

			cfg := scaffoldConfig(name)
			if err := config.NewLoader().SaveToFile(cfg, path); err != nil {
				return fail(cmd, "saving configuration: %v", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", ux.IconSuccess.Render(),
				ux.Styles.Bold.Render("Project initialized: "+name))
			fmt.Fprintf(out, "%s Configuration saved to %s\n", ux.IconSuccess.Render(), path)
			fmt.Fprintf(out, "%s Next: edit the sample pipeline, then 'devflow run hello'\n",
				ux.IconInfo.Render())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration")
	return cmd
}

// scaffoldConfig builds the starter configuration written by init.
func scaffoldConfig(name string) *config.ProjectConfig {
	enabled := true
	return &config.ProjectConfig{
		Project: config.ProjectMeta{
			Name:    name,
			Version: "0.1.0",
		},
		Components: map[string]config.ComponentConfig{
			"pipeline":    {Type: "pipeline", Enabled: &enabled},
			"feedback":    {Type: "feedback", Enabled: &enabled},
			"context":     {Type: "context", Enabled: &enabled},
			"environment": {Type: "environment", Enabled: &enabled},
		},
		Pipelines: []config.PipelineConfig{
			{
				Name:        "hello",
				Description: "Sample pipeline",
				Tasks: []config.TaskConfig{
					{
						Name:    "greet",
						Command: fmt.Sprintf("echo hello from %s", name),
						StoreAs: "greeting",
					},
					{
						Name:      "shout",
						Command:   "echo pipeline complete",
						DependsOn: []string{"greet"},
					},
				},
			},
		},
	}
}
