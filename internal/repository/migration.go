package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

const migrationsTable = "comfortcast_schema_migrations"

// Migrate applies all pending SQL migrations from the embedded filesystem.
// Migrations live under <path>/<driver>/ so each dialect carries its own DDL.
// An already up-to-date schema is not an error.
func Migrate(db *gorm.DB, driver string, migrationFS fs.FS, path string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("access underlying sql.DB: %w", err)
	}

	sourceDriver, err := iofs.New(migrationFS, path+"/"+driver)
	if err != nil {
		return fmt.Errorf("open migration source %s/%s: %w", path, driver, err)
	}

	dbDriver, err := databaseDriver(driver, sqlDB)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, driver, dbDriver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	// Close only the source: the database driver shares the live connection
	// pool the rest of the application keeps using.
	defer func() {
		if cerr := sourceDriver.Close(); cerr != nil {
			logger.Warnf("repository: closing migration source: %v", cerr)
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debugf("repository: schema already up to date")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Infof("repository: schema migrations applied")
	return nil
}

func databaseDriver(driver string, sqlDB *sql.DB) (database.Driver, error) {
	switch driver {
	case "mysql":
		return migratemysql.WithInstance(sqlDB, &migratemysql.Config{MigrationsTable: migrationsTable})
	case "postgres":
		return migratepostgres.WithInstance(sqlDB, &migratepostgres.Config{MigrationsTable: migrationsTable})
	case "sqlite":
		return migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{MigrationsTable: migrationsTable})
	default:
		return nil, fmt.Errorf("unsupported database driver for migration: %s", driver)
	}
}
