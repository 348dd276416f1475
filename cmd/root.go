package cmd

import (
	"log/slog"
	"os"

	"event-ticketing/config"
	_ "event-ticketing/migrations"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/spf13/cobra"
)

// NewApp builds the pocketbase app that owns the database, the migrations
// and the CLI. Running the binary without a subcommand serves the web
// application.
func NewApp(cfg *config.Config) *pocketbase.PocketBase {
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir:   cfg.DataDir,
		DataMaxOpenConns: cfg.DBMaxOpenConns,
		DataMaxIdleConns: cfg.DBMaxIdleConns,
		HideStartBanner:  true,
	})

	app.RootCmd.Use = "event-ticketing"
	app.RootCmd.Short = "Event listing and ticket sales server"
	app.RootCmd.SilenceUsage = true

	serve := newServeCmd(app, cfg)
	app.RootCmd.RunE = serve.RunE
	app.RootCmd.AddCommand(serve)

	// migrate up | down [n] | create | collections | history-sync
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Dir:          "migrations",
		TemplateLang: migratecmd.TemplateLangGo,
		Automigrate:  false,
	})

	return app
}

func newServeCmd(app core.App, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply pending migrations and start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Start(app, cfg)
		},
	}
}

// Execute runs the CLI. pocketbase listens for SIGINT and SIGTERM and fires
// OnTerminate, which is what stops the server.
func Execute() {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	if err := NewApp(cfg).Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// setupLogger installs the process-wide slog handler: text while developing,
// JSON everywhere else.
func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var handler slog.Handler
	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
