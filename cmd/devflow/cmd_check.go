package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devflowhq/devflow/internal/environ"
	"github.com/devflowhq/devflow/internal/ux"
)

func newCheckCmd() *cobra.Command {
	var (
		goVersion string
		tools     []string
		envVars   []string
		dirs      []string
		fix       bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the development environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ux.Styles.Bold.Render("Checking environment..."))

			checker := environ.New(environ.Config{
				GoVersion:     goVersion,
				RequiredTools: tools,
				RequiredEnv:   envVars,
				Directories:   dirs,
			})
			if err := checker.Initialize(); err != nil {
				return fail(cmd, "initializing checker: %v", err)
			}

			err := checker.Validate()
			fmt.Fprintln(out)
			fmt.Fprintln(out, checker.Report())

			if err != nil && fix {
				fmt.Fprintln(out)
				fmt.Fprintln(out, ux.Styles.Warning.Render("Attempting auto-fix..."))
				for name, ok := range checker.AutoFix() {
					icon := ux.IconSuccess
					if !ok {
						icon = ux.IconError
					}
					fmt.Fprintf(out, "%s %s\n", icon.Render(), name)
				}
				err = checker.Validate()
			}

			if err != nil {
				return fail(cmd, "environment checks failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&goVersion, "go-version", "", "minimum Go version")
	cmd.Flags().StringSliceVar(&tools, "tools", nil, "required system tools")
	cmd.Flags().StringSliceVar(&envVars, "env", nil, "required environment variables")
	cmd.Flags().StringSliceVar(&dirs, "dirs", nil, "required directories")
	cmd.Flags().BoolVar(&fix, "fix", false, "attempt to auto-fix issues")
	return cmd
}
