package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/members/cmd/cli/commands"
	"github.com/cornerstone-fellowship/members/internal/config"
	"github.com/cornerstone-fellowship/members/pkg/notify"
	"github.com/cornerstone-fellowship/members/pkg/postgres"
	"github.com/cornerstone-fellowship/members/pkg/utils/logging"
)

var (
	verbose bool
	app     = &commands.AppContext{Ctx: context.Background()}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "members",
		Short: "Cornerstone member services - event registrations and volunteer shifts",
		Long:  `A CLI and HTTP server for event RSVPs with waitlists and volunteer shift sign-up.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			shutdown()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&app.Env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.CreateEventCmd(app))
	rootCmd.AddCommand(commands.SetEventStatusCmd(app))
	rootCmd.AddCommand(commands.SubmitRSVPCmd(app))
	rootCmd.AddCommand(commands.CancelRSVPCmd(app))
	rootCmd.AddCommand(commands.CheckCapacityCmd(app))
	rootCmd.AddCommand(commands.ListRSVPsCmd(app))
	rootCmd.AddCommand(commands.CreateShiftCmd(app))
	rootCmd.AddCommand(commands.DefineShiftsCmd(app))
	rootCmd.AddCommand(commands.ListShiftsCmd(app))
	rootCmd.AddCommand(commands.SignUpForShiftCmd(app))
	rootCmd.AddCommand(commands.CancelShiftSignupCmd(app))
	rootCmd.AddCommand(commands.CancelShiftCmd(app))
	rootCmd.AddCommand(commands.AuthorizeGmailCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		shutdown()
		os.Exit(1)
	}
}

// initApp sets up logger, config, database and notifier
func initApp(cmd *cobra.Command) error {
	var err error

	app.Logger, err = logging.InitLogger(app.Env, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", app.Env), zap.String("command", cmd.Name()))

	app.Logger.Debug("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(app.Env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app.Location, err = app.Cfg.Location()
	if err != nil {
		return err
	}
	app.Logger.Debug("Configuration loaded successfully", zap.String("timezone", app.Cfg.Timezone))

	if !commands.NeedsDatabase(cmd.Annotations) {
		return nil
	}

	app.Logger.Info("Connecting to database")
	app.Database, err = postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.Logger.Debug("Database connected")

	sender, err := commands.NewSender(app.Ctx, app.Cfg.Notifications, app.Env, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize notifications: %w", err)
	}
	app.Notifier = notify.NewDispatcher(sender, app.Logger)
	app.Logger.Debug("Notifications initialized", zap.String("provider", app.Cfg.Notifications.Provider))

	return nil
}

// shutdown flushes pending notifications and releases resources. Safe to call twice.
func shutdown() {
	if app.Notifier != nil {
		app.Notifier.Wait()
		app.Notifier = nil
	}
	if app.Database != nil {
		app.Database.Close()
		app.Database = nil
	}
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
}
