package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/devflowhq/devflow/api"
	"github.com/devflowhq/devflow/config"
	"github.com/devflowhq/devflow/internal/sched"
	"github.com/devflowhq/devflow/internal/ux"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline API with scheduling and config hot reload",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return fail(cmd, "%v", err)
			}
			defer app.close()

			server := api.NewServer(addr, app.manager, app.proj.Status)

			// One lock serializes every manager caller: API handlers,
			// scheduler ticks and config reload rebuilds.
			execLock := server.ExecLock()

			scheduler := sched.New(app.manager, server.History(), execLock)
			for name, spec := range config.Scheduled(app.cfg) {
				if err := scheduler.Add(name, spec); err != nil {
					return fail(cmd, "%v", err)
				}
			}
			scheduler.Start()
			defer scheduler.Stop()

			// Hot reload: rebuild pipelines and reschedule on config change.
			watcher, err := config.NewWatcher(opts.configPath, func(cfg *config.ProjectConfig) {
				execLock.Lock()
				config.Build(app.manager, cfg)
				execLock.Unlock()

				for _, name := range scheduler.Scheduled() {
					scheduler.Remove(name)
				}
				for name, spec := range config.Scheduled(cfg) {
					_ = scheduler.Add(name, spec)
				}
			})
			if err != nil {
				return fail(cmd, "%v", err)
			}
			watcher.Start()
			defer func() { _ = watcher.Stop() }()

			fmt.Fprintf(cmd.OutOrStdout(), "%s Serving pipelines on %s\n",
				ux.IconInfo.Render(), addr)

			done := make(chan struct{})
			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh

				fmt.Fprintln(cmd.OutOrStdout(), "Shutting down...")
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := server.Shutdown(ctx); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Shutdown error: %v\n", err)
				}
				close(done)
			}()

			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fail(cmd, "server error: %v", err)
			}

			<-done
			fmt.Fprintln(cmd.OutOrStdout(), "Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP server address")
	return cmd
}
