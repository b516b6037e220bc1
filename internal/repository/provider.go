// Package repository persists inference results to a relational database and
// keeps the schema migrated. MySQL is the production target; postgres and
// sqlite are supported for parity with the environments the team runs
// elsewhere (sqlite carries the test suite).
package repository

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

// Config selects the database driver and connection parameters.
type Config struct {
	Driver string `yaml:"driver"` // mysql, postgres, or sqlite
	DSN    string `yaml:"dsn"`

	MaxOpenConns           int `yaml:"maxOpenConns"`
	MaxIdleConns           int `yaml:"maxIdleConns"`
	ConnMaxLifetimeSeconds int `yaml:"connMaxLifetimeSeconds"`
}

// DialectorFactory builds a gorm.Dialector from a DSN.
type DialectorFactory func(dsn string) gorm.Dialector

var dialectors = map[string]DialectorFactory{
	"mysql":    mysql.Open,
	"postgres": postgres.Open,
	"sqlite":   sqlite.Open,
}

// Open connects to the configured database and applies pool settings.
func Open(cfg Config) (*gorm.DB, error) {
	factory, ok := dialectors[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(factory(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s connection: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access underlying sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeSeconds) * time.Second)
	}

	logger.Infof("repository: connected to %s database", cfg.Driver)
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
