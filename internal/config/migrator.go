package config

import "github.com/caarlos0/env/v11"

type MigratorConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
}

func LoadMigrator() (MigratorConfig, error) {
	var cfg MigratorConfig
	err := env.Parse(&cfg)
	return cfg, err
}
