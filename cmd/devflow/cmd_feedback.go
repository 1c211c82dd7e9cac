package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devflowhq/devflow/internal/feedback"
	"github.com/devflowhq/devflow/internal/ux"
)

func newFeedbackCmd(opts *rootOptions) *cobra.Command {
	var (
		level  string
		export string
	)

	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Show progress feedback",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return fail(cmd, "%v", err)
			}
			defer app.close()

			summary := app.tracker.ProgressSummary(feedback.Level(level))

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ux.Styles.Title.Render("Progress Summary"))
			fmt.Fprintf(out, "Level: %s\n", summary.Level)
			fmt.Fprintf(out, "\nMilestones: %d/%d (%.1f%%)\n",
				summary.Milestones.Completed, summary.Milestones.Total, summary.Milestones.Percentage)

			if len(summary.RecentEvents) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, ux.Styles.Bold.Render("Recent Events:"))
				for _, event := range summary.RecentEvents {
					fmt.Fprintf(out, "  %s [%s] %s\n",
						ux.LevelIcon(event.Level).Render(), event.Category, event.Message)
				}
			}
			if summary.Story != "" {
				fmt.Fprintln(out)
				fmt.Fprintln(out, summary.Story)
			}

			if export != "" {
				path, err := app.tracker.ExportReport(export)
				if err != nil {
					return fail(cmd, "exporting report: %v", err)
				}
				fmt.Fprintf(out, "\n%s Report written to %s\n", ux.IconSuccess.Render(), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&level, "level", "", "detail level: technical, executive or creative")
	cmd.Flags().StringVar(&export, "export", "", "write the full JSON report to this path")
	return cmd
}
