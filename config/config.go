/*
config.go - Runtime configuration

PURPOSE:
  Collects every knob of the server and the CLI in one struct, parsed from
  CASHFLOW_* environment variables. An optional .env file in the working
  directory is loaded first; real environment variables win over it.

VARIABLES:
  CASHFLOW_PORT               HTTP port (default 8080)
  CASHFLOW_DB_PATH            SQLite path, ":memory:" allowed (default ./data/cashflow.db)
  CASHFLOW_LOG_LEVEL          debug | info | warn | error (default info)
  CASHFLOW_LOG_FORMAT         text | json (default text)
  CASHFLOW_DEFAULT_HORIZON    Days projected when none is requested (default 60)
  CASHFLOW_MEAL_CONTRIBUTION  Monthly MEAL voucher credit (default 1236.40)
  CASHFLOW_FOOD_CONTRIBUTION  Monthly FOOD voucher credit (default 974.16)
  CASHFLOW_CORS_ORIGINS       Comma-separated allowed origins (default *)
  CASHFLOW_REFRESH_DEBOUNCE   Delay before recomputing after an edit (default 250ms)
  CASHFLOW_SEED_SCENARIO      Demo scenario loaded into an empty store on serve

SEE ALSO:
  - cli/root.go: Flags override the values loaded here
*/
package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/warp/cashflow-engine/cashflow"
)

type Config struct {
	// HTTP Server
	Port        int      `env:"CASHFLOW_PORT"         envDefault:"8080"`
	CORSOrigins []string `env:"CASHFLOW_CORS_ORIGINS" envDefault:"*" envSeparator:","`

	// Database
	DBPath string `env:"CASHFLOW_DB_PATH" envDefault:"./data/cashflow.db"`

	// Logging
	LogLevel  string `env:"CASHFLOW_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"CASHFLOW_LOG_FORMAT" envDefault:"text"`

	// Projection
	DefaultHorizon   int             `env:"CASHFLOW_DEFAULT_HORIZON"   envDefault:"60"`
	MealContribution decimal.Decimal `env:"CASHFLOW_MEAL_CONTRIBUTION" envDefault:"1236.40"`
	FoodContribution decimal.Decimal `env:"CASHFLOW_FOOD_CONTRIBUTION" envDefault:"974.16"`
	RefreshDebounce  time.Duration   `env:"CASHFLOW_REFRESH_DEBOUNCE"  envDefault:"250ms"`

	SeedScenario string `env:"CASHFLOW_SEED_SCENARIO"`
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration with every default applied and no
// environment lookups.
func Default() *Config {
	return &Config{
		Port:             8080,
		CORSOrigins:      []string{"*"},
		DBPath:           "./data/cashflow.db",
		LogLevel:         "info",
		LogFormat:        "text",
		DefaultHorizon:   60,
		MealContribution: decimal.RequireFromString("1236.40"),
		FoodContribution: decimal.RequireFromString("974.16"),
		RefreshDebounce:  250 * time.Millisecond,
	}
}

// Validate validates the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Port < 1 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Port))
	}

	if c.DBPath == "" {
		problems = append(problems, "database path cannot be empty")
	} else if c.DBPath != ":memory:" && strings.HasSuffix(c.DBPath, string(filepath.Separator)) {
		problems = append(problems, fmt.Sprintf("database path '%s' is a directory", c.DBPath))
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if c.DefaultHorizon < 1 || c.DefaultHorizon > cashflow.MaxHorizon {
		problems = append(problems, fmt.Sprintf("invalid default horizon %d: must be between 1 and %d", c.DefaultHorizon, cashflow.MaxHorizon))
	}
	if c.MealContribution.IsNegative() {
		problems = append(problems, fmt.Sprintf("invalid meal contribution %s: must not be negative", c.MealContribution))
	}
	if c.FoodContribution.IsNegative() {
		problems = append(problems, fmt.Sprintf("invalid food contribution %s: must not be negative", c.FoodContribution))
	}
	if c.RefreshDebounce < 0 {
		problems = append(problems, fmt.Sprintf("invalid refresh debounce %v: must not be negative", c.RefreshDebounce))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Contributions returns the voucher credits the engine should apply.
func (c *Config) Contributions() cashflow.VoucherContributions {
	return cashflow.VoucherContributions{
		cashflow.VoucherMeal: c.MealContribution,
		cashflow.VoucherFood: c.FoodContribution,
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ParseLevel maps a level name onto slog.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level '%s': must be debug, info, warn or error", s)
}
