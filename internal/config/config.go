// Package config loads the application configuration: built-in defaults,
// overridden by the embedded YAML file, with ${VAR} placeholders expanded
// from the environment (optionally seeded from a .env file).
package config

import (
	"fmt"

	"github.com/comfortlab/comfortcast/internal/dataset"
	"github.com/comfortlab/comfortcast/internal/feature"
	"github.com/comfortlab/comfortcast/internal/ingest"
	"github.com/comfortlab/comfortcast/internal/job/metrics"
	"github.com/comfortlab/comfortcast/internal/repository"
	"github.com/comfortlab/comfortcast/internal/storage"
)

// Config is the root configuration tree.
type Config struct {
	Comfortcast Comfortcast `yaml:"comfortcast"`
}

// Comfortcast groups every configurable concern of the pipeline.
type Comfortcast struct {
	System  System              `yaml:"system"`
	Ingest  ingest.ClientConfig `yaml:"ingest"`
	Feature feature.Config      `yaml:"feature"`
	Dataset Dataset             `yaml:"dataset"`
	// Storage holds named object-store definitions; Dataset.StorageRef picks
	// the one the pipeline writes to. Entries stay untyped until resolved so
	// each backend can carry its own fields.
	Storage  map[string]interface{} `yaml:"storage"`
	Database repository.Config      `yaml:"database"`
	Metrics  Metrics                `yaml:"metrics"`
	Tracing  metrics.TracingConfig  `yaml:"tracing"`
}

// StorageConfig resolves and decodes the named object-store definition.
func (c *Comfortcast) StorageConfig(name string) (storage.Config, error) {
	raw, ok := c.Storage[name]
	if !ok {
		return storage.Config{}, fmt.Errorf("storage definition %q not found in configuration", name)
	}
	var cfg storage.Config
	if err := Bind(raw, &cfg); err != nil {
		return storage.Config{}, fmt.Errorf("decode storage definition %q: %w", name, err)
	}
	return cfg, nil
}

// System holds process-level settings.
type System struct {
	Logging Logging `yaml:"logging"`
}

// Logging selects the log level.
type Logging struct {
	Level string `yaml:"level"`
}

// Dataset parameterizes the rolling master dataset.
type Dataset struct {
	// StorageRef names the storage definition the dataset lives in.
	StorageRef string `yaml:"storageRef"`
	// Key is the object-store key of the master CSV.
	Key string `yaml:"key"`
	// SnapshotDir is the object-store prefix of parquet snapshots.
	SnapshotDir string `yaml:"snapshotDir"`
	// RetentionDays is the rolling window; 0 uses the default (630).
	RetentionDays int `yaml:"retentionDays"`
	// Compression is the parquet codec: SNAPPY, GZIP, or NONE.
	Compression string `yaml:"compression"`
	// FetchWindowHours is how far back each refresh run fetches.
	FetchWindowHours int `yaml:"fetchWindowHours"`
}

// Metrics parameterizes the Prometheus endpoint.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	return &Config{
		Comfortcast: Comfortcast{
			System: System{Logging: Logging{Level: "INFO"}},
			Ingest: ingest.ClientConfig{
				BaseURL:           "https://apihub.kma.go.kr",
				TimeoutSeconds:    30,
				RequestsPerSecond: 2,
				Burst:             1,
			},
			Feature: feature.DefaultConfig(),
			Dataset: Dataset{
				StorageRef:       "master",
				Key:              "datasets/weather_pm10_master.csv",
				SnapshotDir:      "datasets/snapshots",
				RetentionDays:    dataset.DefaultRetentionDays,
				Compression:      "SNAPPY",
				FetchWindowHours: 24,
			},
			Storage: map[string]interface{}{
				"master": map[string]interface{}{
					"type":    "local",
					"baseDir": "./data",
				},
			},
			Database: repository.Config{
				Driver:       "sqlite",
				DSN:          "./data/comfortcast.db",
				MaxOpenConns: 5,
				MaxIdleConns: 2,
			},
			Metrics: Metrics{Enabled: false, Addr: ":9090"},
			Tracing: metrics.TracingConfig{Enabled: false, SampleRatio: 1},
		},
	}
}
