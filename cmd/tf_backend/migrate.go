package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

var flagMigrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|version]",
	Short: "Apply or roll back database migrations",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		direction := "up"
		if len(args) == 1 {
			direction = args[0]
		}
		return withMigrator(func(m *migrate.Migrate) error {
			switch direction {
			case "up":
				return applyMigrations(m, flagMigrateSteps)
			case "down":
				steps := flagMigrateSteps
				if steps <= 0 {
					steps = 1
				}
				if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return fmt.Errorf("rolling back %d migration(s): %w", steps, err)
				}
				logger.Info("Migrations rolled back", slog.Int("steps", steps))
				return nil
			case "version":
				version, dirty, err := m.Version()
				if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
					return fmt.Errorf("reading migration version: %w", err)
				}
				logger.Info("Migration version", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
				return nil
			default:
				return fmt.Errorf("unknown migrate direction %q", direction)
			}
		})
	},
}

func init() {
	migrateCmd.Flags().IntVar(&flagMigrateSteps, "steps", 0, "Number of migrations to apply (0 = all for up, 1 for down)")
	rootCmd.AddCommand(migrateCmd)
}

// withMigrator opens a database/sql connection through the pgx stdlib driver and hands a
// migrate instance over cfg.MigrationsPath to fn.
func withMigrator(fn func(m *migrate.Migrate) error) error {
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("opening database connection for migrations: %w", err)
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return fmt.Errorf("pinging database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("creating postgres driver instance for migrations: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}

	runErr := fn(m)

	sourceErr, dbErr := m.Close()
	if runErr != nil {
		return runErr
	}
	if sourceErr != nil {
		return fmt.Errorf("migration source error: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("migration database error: %w", dbErr)
	}
	return nil
}

// applyMigrations applies steps up migrations, or all of them when steps is zero.
func applyMigrations(m *migrate.Migrate, steps int) error {
	var err error
	if steps > 0 {
		err = m.Steps(steps)
	} else {
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	logger.Info("Database migrations applied successfully.")
	return nil
}

// checkMigrationState refuses to serve on a dirty or unmigrated schema.
func checkMigrationState(m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return errors.New("database has no migrations applied, run `tf_backend migrate up`")
	}
	if err != nil {
		return fmt.Errorf("reading migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database migration %d is dirty, fix it before serving", version)
	}
	logger.Info("Database schema check passed", slog.Uint64("version", uint64(version)))
	return nil
}
