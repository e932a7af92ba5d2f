package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/gmz-api/internal/infrastructure/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Aplica las migraciones SQL pendientes",
	Long: `Aplica en orden las migraciones embebidas que aún no figuran en schema_migrations.
Es idempotente: sin pendientes no hace nada.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	pool, err := openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool, log.Named("migrate"))
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "sin migraciones pendientes")
		return nil
	}
	for _, v := range applied {
		fmt.Fprintf(cmd.OutOrStdout(), "aplicada %s\n", v)
	}
	return nil
}
