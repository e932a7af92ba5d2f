// gmzctl tareas de operación sobre la base de GMZ: migraciones, conciliación del ledger,
// alta de usuarios y carga de categorías.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/jhoicas/gmz-api/internal/infrastructure/postgres"
	"github.com/jhoicas/gmz-api/pkg/config"
	"github.com/jhoicas/gmz-api/pkg/logger"
)

var (
	verbose bool

	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gmzctl",
	Short: "Herramientas de operación para GMZ",
	Long: `gmzctl ejecuta tareas administrativas contra la base de datos configurada
por las mismas variables de entorno que la API (DB_*, JWT_*, ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("cargar configuración: %w", err)
		}
		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		log = logger.NewWithWriter(logger.Config{Env: cfg.App.Env, Level: level}, cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log en nivel debug")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(createUserCmd)
	rootCmd.AddCommand(seedCmd)
}

// openPool abre el pool con la configuración cargada en PersistentPreRunE.
func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return pool, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
