package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devflowhq/devflow/internal/ux"
)

func newContextCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Manage stored contexts",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List stored contexts",
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := loadApp(opts)
				if err != nil {
					return fail(cmd, "%v", err)
				}
				defer app.close()

				out := cmd.OutOrStdout()
				ids := app.store.List()
				if len(ids) == 0 {
					fmt.Fprintln(out, ux.Styles.Muted.Render("(no contexts)"))
					return nil
				}
				for _, id := range ids {
					rec, _ := app.store.Get(id)
					fmt.Fprintf(out, "%s %s (v%d, %d keys)\n",
						ux.IconBullet.Render(), id, rec.Version, len(rec.Data))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show one context as JSON",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := loadApp(opts)
				if err != nil {
					return fail(cmd, "%v", err)
				}
				defer app.close()

				rec, ok := app.store.Get(args[0])
				if !ok {
					return fail(cmd, "context %s not found", args[0])
				}
				data, err := json.MarshalIndent(rec, "", "  ")
				if err != nil {
					return fail(cmd, "encoding context: %v", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a stored context",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := loadApp(opts)
				if err != nil {
					return fail(cmd, "%v", err)
				}
				defer app.close()

				if !app.store.Delete(args[0]) {
					return fail(cmd, "context %s not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %s\n", ux.IconSuccess.Render(), args[0])
				return nil
			},
		},
	)
	return cmd
}
