package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

type EconomyConfig struct {
	StartingBalance int64         `env:"STARTING_BALANCE" envDefault:"1000"`
	BonusAmount     int64         `env:"BONUS_AMOUNT" envDefault:"500"`
	BonusCooldown   time.Duration `env:"BONUS_COOLDOWN" envDefault:"24h"`
	LeaderboardSize int           `env:"LEADERBOARD_SIZE" envDefault:"10"`
	LeaderboardMax  int           `env:"LEADERBOARD_MAX" envDefault:"100"`
	// RandomSeed of 0 seeds the wager source from crypto/rand.
	RandomSeed uint64 `env:"RANDOM_SEED" envDefault:"0"`
}

func LoadEconomy() (EconomyConfig, error) {
	var cfg EconomyConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c EconomyConfig) Validate() error {
	if c.StartingBalance < 0 {
		return errors.New("STARTING_BALANCE must not be negative")
	}
	if c.BonusAmount <= 0 {
		return errors.New("BONUS_AMOUNT must be positive")
	}
	if c.BonusCooldown <= 0 {
		return errors.New("BONUS_COOLDOWN must be positive")
	}
	if c.LeaderboardSize < 1 || c.LeaderboardMax < c.LeaderboardSize {
		return errors.New("LEADERBOARD_SIZE must be in [1, LEADERBOARD_MAX]")
	}
	return nil
}
