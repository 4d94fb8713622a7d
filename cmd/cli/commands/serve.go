package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cornerstone-fellowship/members/pkg/api"
)

const shutdownTimeout = 15 * time.Second

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")
			if migrate {
				if err := app.Database.RunMigrations(app.Ctx); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(app.Ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := api.NewServer(app.Database, app.Notifier, app.Logger, app.Location).HTTPServer(app.Cfg.Server)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				app.Logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server failed: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				app.Logger.Info("Shutting down HTTP server")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("failed to shut down http server: %w", err)
				}
				return nil
			})

			return g.Wait()
		},
	}

	cmd.Flags().Bool("migrate", false, "Apply pending migrations before serving")

	return cmd
}

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Database.RunMigrations(app.Ctx); err != nil {
				return err
			}

			version, dirty, err := app.Database.MigrationVersion()
			if err != nil {
				return err
			}
			if dirty {
				return fmt.Errorf("schema version %d is dirty; fix it by hand before retrying", version)
			}

			fmt.Printf("\n✓ Database at schema version %d\n\n", version)
			return nil
		},
	}
}
