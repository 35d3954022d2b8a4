package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// app carries the persistent flags shared by every subcommand.
type app struct {
	out    io.Writer
	errOut io.Writer

	backend     string
	sqlitePath  string
	databaseURL string
	verbose     bool
	noEvents    bool
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "trackerctl",
		Short:         "Administer the finance tracker",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.backend, "backend", "", "data backend (memory, sqlite, postgres); defaults to DATA_BACKEND")
	flags.StringVar(&a.sqlitePath, "sqlite-path", "", "SQLite database file; defaults to SQLITE_DB_PATH")
	flags.StringVar(&a.databaseURL, "database-url", "", "PostgreSQL DSN; defaults to DATABASE_URL")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	flags.BoolVar(&a.noEvents, "no-events", false, "do not publish record events even when AMQP_URL is set")

	root.AddCommand(
		newMigrateCmd(a),
		newListCmd(a),
		newAddCmd(a),
		newDeleteCmd(a),
		newTableCmd(a),
		newSummaryCmd(a),
	)
	return root
}

// logger writes to stderr so command output stays machine-readable.
func (a *app) logger() *log.Logger {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	return log.New(log.Config{
		Level:     level,
		Component: log.ComponentCLI,
		Handler:   slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}),
	})
}

// backendConfig resolves the store settings from the environment, then
// applies flag overrides.
func (a *app) backendConfig() (backend.Config, error) {
	cfg := config.Load()
	if a.backend != "" {
		cfg.DataBackend = a.backend
	}
	if a.sqlitePath != "" {
		cfg.SQLiteDBPath = a.sqlitePath
	}
	if a.databaseURL != "" {
		cfg.DatabaseURL = a.databaseURL
	}
	return backend.FromAppConfig(cfg)
}

// openLedger opens the configured store and, unless disabled, an AMQP
// publisher so the sheet mirror sees CLI mutations too.
func (a *app) openLedger(ctx context.Context) (*services.Ledger, error) {
	logger := a.logger()

	bcfg, err := a.backendConfig()
	if err != nil {
		return nil, err
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	var publisher services.Publisher
	cfg := config.Load()
	if cfg.AMQPEnabled() && !a.noEvents {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, record events will not be published", "error", err)
		} else {
			publisher = client
		}
	}

	return services.NewLedger(result.Store, publisher, logger), nil
}

// withLedger runs fn against an open ledger and closes it afterwards.
func (a *app) withLedger(ctx context.Context, fn func(*services.Ledger) error) (err error) {
	ledger, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ledger.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close: %w", cerr)
		}
	}()
	return fn(ledger)
}
