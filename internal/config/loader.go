package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/comfortlab/comfortcast/pkg/util/exception"
	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

const moduleName = "config"

// EmbeddedConfig is the raw embedded application.yaml.
type EmbeddedConfig []byte

// Load builds the effective configuration: defaults, then the embedded YAML
// with ${VAR} placeholders expanded from the environment. A .env file, when
// present, seeds the environment first so local runs need no exports.
func Load(envFilePath string, embedded EmbeddedConfig) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			logger.Debugf(".env file not found or could not be loaded: %v", err)
		}
	}

	cfg := NewConfig()

	expanded := os.ExpandEnv(string(embedded))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, exception.NewPipelineError(moduleName, "failed to unmarshal embedded config", err, false, false)
	}
	restoreDefaults(cfg)

	logger.SetLogLevel(cfg.Comfortcast.System.Logging.Level)
	return cfg, nil
}

// restoreDefaults re-fills fields that an unset ${VAR} placeholder in the
// embedded YAML expanded to the empty string.
func restoreDefaults(cfg *Config) {
	defaults := NewConfig()
	c := &cfg.Comfortcast
	d := &defaults.Comfortcast

	if c.System.Logging.Level == "" {
		c.System.Logging.Level = d.System.Logging.Level
	}
	if c.Ingest.BaseURL == "" {
		c.Ingest.BaseURL = d.Ingest.BaseURL
	}
	if c.Database.Driver == "" {
		c.Database.Driver = d.Database.Driver
	}
	if c.Database.DSN == "" {
		c.Database.DSN = d.Database.DSN
	}
	if c.Dataset.StorageRef == "" {
		c.Dataset.StorageRef = d.Dataset.StorageRef
	}
	if props, ok := c.Storage[c.Dataset.StorageRef].(map[string]interface{}); ok {
		if t, _ := props["type"].(string); t == "" {
			props["type"] = "local"
		}
	}
}
