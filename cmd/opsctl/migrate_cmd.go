package main

import (
	"github.com/spf13/cobra"

	"github.com/jhoicas/municipal-ops-api/internal/infrastructure/postgres"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migraciones de esquema (goose, embebidas en el binario)",
	}
	cmd.AddCommand(
		migrateSubcmd("up", "Aplica todas las migraciones pendientes", func(m *postgres.Migrator, cmd *cobra.Command) (any, error) {
			return m.Up(cmd.Context())
		}),
		migrateSubcmd("down", "Revierte la última migración aplicada", func(m *postgres.Migrator, cmd *cobra.Command) (any, error) {
			return m.Down(cmd.Context())
		}),
		migrateSubcmd("status", "Lista las migraciones y si están aplicadas", func(m *postgres.Migrator, cmd *cobra.Command) (any, error) {
			return m.Status(cmd.Context())
		}),
	)
	return cmd
}

func migrateSubcmd(use, short string, run func(*postgres.Migrator, *cobra.Command) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, log, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			m, err := postgres.NewMigrator(pool)
			if err != nil {
				return err
			}
			defer m.Close()

			out, err := run(m, cmd)
			if err != nil {
				return err
			}
			log.Info().Str("command", "migrate "+use).Msg("migraciones ok")
			return writeJSON(out)
		},
	}
}
