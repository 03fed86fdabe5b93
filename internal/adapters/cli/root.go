package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"trade-ledger/internal/app"
	"trade-ledger/internal/config"
	"trade-ledger/internal/db"
	"trade-ledger/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

// Env is what every command runs against.
type Env struct {
	Config *config.Config
	Log    *zap.Logger

	// Open connects to the database and returns the application service with
	// its release func. Commands that never touch the store do not call it.
	Open func(ctx context.Context) (app.ApplicationService, func(), error)
}

// NewEnv builds the production Env from the process configuration.
func NewEnv(cfg *config.Config, log *zap.Logger) *Env {
	return &Env{
		Config: cfg,
		Log:    log,
		Open: func(ctx context.Context) (app.ApplicationService, func(), error) {
			if err := cfg.Validate(); err != nil {
				return nil, nil, err
			}
			pool, err := db.NewPool(ctx, cfg.Database)
			if err != nil {
				return nil, nil, err
			}
			return app.NewDefaultAppService(pool, log), pool.Close, nil
		},
	}
}

// NewRootCmd assembles the command tree over env.
func NewRootCmd(env *Env) *cobra.Command {
	root := &cobra.Command{
		Use:   "app",
		Short: "Operator tooling for the trade ledger",
		Long: `app runs schema migrations, loads demo data, previews document numbers,
prints ledger aggregates and mints development tokens against the
database named by DATABASE_URL.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(env),
		newSeedCmd(env),
		newNextNumberCmd(env),
		newStatsCmd(env),
		newTokenCmd(env),
	)
	return root
}

// Execute runs the CLI against the process environment and exits non-zero on failure.
func Execute() {
	cfg := config.Load()
	log, err := logger.New(logger.Options{
		Level:       cfg.LogLevel,
		Production:  cfg.IsProduction(),
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := NewRootCmd(NewEnv(cfg, log)).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withService opens the store for the duration of fn.
func (e *Env) withService(ctx context.Context, fn func(app.ApplicationService) error) error {
	svc, release, err := e.Open(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if release != nil {
		defer release()
	}
	return fn(svc)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
