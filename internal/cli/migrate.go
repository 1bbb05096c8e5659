package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/infra/sqlstore"
	"timed-quiz-service/internal/infra/sqlstore/migrations"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return runMigrationsWithConfig(ctx, cfg)
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	driver, dsn, err := sqlTarget(cfg)
	if err != nil {
		return err
	}
	db, err := sqlstore.Open(driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	group, err := migrations.Run(ctx, db)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Printf("no new migrations")
		return nil
	}
	log.Printf("migrations applied: %s", group)
	return nil
}

// sqlTarget picks the SQL database from config; Postgres wins over SQLite.
func sqlTarget(cfg config.Config) (driver, dsn string, err error) {
	switch {
	case cfg.Postgres.URL != "":
		return sqlstore.DriverPostgres, cfg.Postgres.URL, nil
	case cfg.SQLite.Path != "":
		return sqlstore.DriverSQLite, cfg.SQLite.Path, nil
	default:
		return "", "", fmt.Errorf("no sql database configured (postgres.url or sqlite.path)")
	}
}
