// Package config loads server configuration from the environment and optional .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds everything the server needs at startup.
type Config struct {
	Address    string `env:"ADDRESS" envDefault:":8080"`
	StaticPath string `env:"STATIC_PATH" envDefault:"./public"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"` // optional rotating log file

	StoreDriver string `env:"STORE_DRIVER" envDefault:"file"`
	DataDir     string `env:"DATA_DIR" envDefault:"./data"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"./data/tablewise.db"`
	DatabaseURL string `env:"DATABASE_URL"`

	AdminPassword string        `env:"ADMIN_PASSWORD,required"`
	JWTSecret     string        `env:"JWT_SECRET,required"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"12h"`

	BackupDir      string        `env:"BACKUP_DIR" envDefault:"./backups"`
	BackupInterval time.Duration `env:"BACKUP_INTERVAL" envDefault:"1h"`

	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"tablewise.events"`
}

// Load reads the given .env files (missing ones are skipped; already-set
// variables win) and parses the environment into a Config.
func Load(files ...string) (*Config, error) {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverFile:
		if c.DataDir == "" {
			return errors.New("DATA_DIR is required for the file driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want file, sqlite or postgres)", c.StoreDriver)
	}

	if c.BackupInterval < 0 {
		return errors.New("BACKUP_INTERVAL must not be negative")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}
