package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devflowhq/devflow/internal/ux"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show project and component status",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return fail(cmd, "%v", err)
			}
			defer app.close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ux.Styles.Title.Render("Project: "+app.proj.Name))
			fmt.Fprintf(out, "Initialized: %v\n", app.proj.Initialized())

			fmt.Fprintln(out)
			fmt.Fprintln(out, ux.Styles.Bold.Render("Components:"))
			for _, name := range app.proj.Components() {
				c, _ := app.proj.Component(name)
				icon := ux.IconSuccess
				if !c.Enabled() {
					icon = ux.IconError
				}
				fmt.Fprintf(out, "  %s %s\n", icon.Render(), name)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, ux.Styles.Bold.Render("Pipelines:"))
			if len(app.manager.ListPipelines()) == 0 {
				fmt.Fprintln(out, ux.Styles.Muted.Render("  (none)"))
			}
			for _, name := range app.manager.ListPipelines() {
				p, _ := app.manager.GetPipeline(name)
				fmt.Fprintf(out, "  %s %s (%d tasks)\n", ux.IconBullet.Render(), name, p.Len())
			}
			return nil
		},
	}
}
