package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devflowhq/devflow/contracts"
	"github.com/devflowhq/devflow/internal/ux"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "run <pipeline>",
		Short: "Execute a pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return fail(cmd, "%v", err)
			}
			defer app.close()

			initial := make(contracts.Context)
			for _, kv := range sets {
				key, value, found := strings.Cut(kv, "=")
				if !found || key == "" {
					return fail(cmd, "invalid --set %q (expected key=value)", kv)
				}
				initial[key] = value
			}

			name := args[0]
			result := app.manager.ExecutePipeline(name, initial)

			out := cmd.OutOrStdout()
			if result.Error != "" {
				return fail(cmd, "%s", result.Error)
			}

			for _, msg := range result.Errors {
				fmt.Fprintf(out, "%s %s\n", ux.IconError.Render(), msg)
			}
			for _, task := range result.ExecutionOrder {
				fmt.Fprintf(out, "%s %s\n", ux.StatusIcon("completed").Render(), task)
			}
			for _, task := range result.FailedTasks {
				p, _ := app.manager.GetPipeline(name)
				detail := ""
				if t, ok := p.Task(task); ok && t.Err != "" {
					detail = ": " + t.Err
				}
				fmt.Fprintf(out, "%s %s%s\n", ux.StatusIcon("failed").Render(), task, detail)
			}

			fmt.Fprintln(out)
			if result.Success {
				fmt.Fprintf(out, "%s %s\n", ux.IconSuccess.Render(),
					ux.Styles.Success.Render(fmt.Sprintf("Pipeline %s completed (%d tasks)", name, len(result.CompletedTasks))))
				return nil
			}
			return fail(cmd, "pipeline %s failed (%d completed, %d failed)",
				name, len(result.CompletedTasks), len(result.FailedTasks))
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "initial context entries (key=value, repeatable)")
	return cmd
}
