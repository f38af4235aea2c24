package repositories

import (
	"database/sql"
	"embed"
	"log/slog"

	"github.com/cockroachdb/errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/easynut/easynut-backend/infra"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// RunMigrations brings the database up to the latest schema version. The
// migrations also seed the metadata tables of the default deployment, so a
// fresh database is usable right after this returns.
func RunMigrations(pgConfig infra.PgConfig, logger *slog.Logger) error {
	db, err := sql.Open("pgx", pgConfig.GetConnectionString())
	if err != nil {
		return errors.Wrap(err, "unable to connect to database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return errors.Wrap(err, "unable to ping database")
	}

	logger.Info("Migrations starting to setup DB")
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return errors.Wrap(err, "unable to run migrations")
	}
	return nil
}
