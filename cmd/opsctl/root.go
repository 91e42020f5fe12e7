package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/jhoicas/municipal-ops-api/internal/infrastructure/postgres"
	"github.com/jhoicas/municipal-ops-api/pkg/config"
	"github.com/jhoicas/municipal-ops-api/pkg/logger"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "opsctl",
		Short:         "Operación de municipal-ops (migraciones, tenants, catálogos)",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(newMigrateCmd(), newTenantCmd(), newServicesCmd())
	return cmd
}

// connectDB abre el pool con la misma configuración que la API.
func connectDB(ctx context.Context) (*pgxpool.Pool, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Config{App: "opsctl", Env: cfg.App.Env, Level: cfg.App.LogLevel, Out: os.Stderr})
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	return pool, log, nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
