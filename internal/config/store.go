package config

import (
	"errors"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	StoreBackendSQLite   = "sqlite"
	StoreBackendPostgres = "postgres"
	// StoreBackendMemory keeps accounts in process memory only; nothing survives a restart.
	StoreBackendMemory = "memory"
)

type StoreConfig struct {
	Backend     string `env:"STORE_BACKEND" envDefault:"sqlite"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"casino.db"`
	PostgresDSN string `env:"POSTGRES_DSN"`
	ReadRetries uint   `env:"STORE_READ_RETRIES" envDefault:"3"`
}

func LoadStore() (StoreConfig, error) {
	var cfg StoreConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	return cfg, cfg.Validate()
}

func (c StoreConfig) Validate() error {
	switch c.Backend {
	case StoreBackendSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return errors.New("SQLITE_PATH is required for the sqlite backend")
		}
	case StoreBackendPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return errors.New("POSTGRES_DSN is required for the postgres backend")
		}
	case StoreBackendMemory:
	default:
		return errors.New("unknown STORE_BACKEND " + c.Backend)
	}
	if c.ReadRetries < 1 {
		return errors.New("STORE_READ_RETRIES must be at least 1")
	}
	return nil
}
