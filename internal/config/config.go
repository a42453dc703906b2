package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

// All monetary limits are expressed in cents. Defaults match the system
// contract: $10,000 per transaction, $1,000,000 balance cap, time-deposit
// principal between $100 and $50,000.
type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv   string `env:"APP_ENV" envDefault:"production"`

	// When set, accounts live in PostgreSQL; otherwise in memory.
	DatabaseURL string `env:"DATABASE_URL"`

	TxCapCents      int64 `env:"TX_CAP_CENTS" envDefault:"1000000"`
	BalanceCapCents int64 `env:"BALANCE_CAP_CENTS" envDefault:"100000000"`

	DepositMinCents int64 `env:"DEPOSIT_MIN_CENTS" envDefault:"10000"`
	DepositMaxCents int64 `env:"DEPOSIT_MAX_CENTS" envDefault:"5000000"`

	TestDepositMaturity time.Duration `env:"TEST_DEPOSIT_MATURITY" envDefault:"1s"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}
