// Package config handles loading and parsing application configuration.
// It supports two sources for the config file path (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Every value in the file can be overridden by the environment variable
// named in its env:"..." tag. After loading, the struct is checked with
// go-playground/validator so cross-field rules (a postgres driver needs a
// database URL, a sqlite driver needs a file path) fail at boot.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Supported values for Config.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-required:"true" validate:"oneof=dev staging prod"`

	// Driver selects the storage backend.
	Driver string `yaml:"storage_driver" env:"STORAGE_DRIVER" env-default:"sqlite" validate:"oneof=sqlite postgres"`

	// StoragePath is the filesystem path to the SQLite .db file.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" validate:"required_if=Driver sqlite"`

	// DatabaseURL is a postgres:// connection string.
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL" validate:"required_if=Driver postgres"`

	// Seed loads the demo schools and students into an empty database.
	Seed bool `yaml:"seed" env:"SEED" env-default:"false"`

	Database   Database   `yaml:"database"`
	HTTPServer HTTPServer `yaml:"http_server"`
	Pagination Pagination `yaml:"pagination"`
}

// Database holds connection-pool tuning shared by both drivers.
type Database struct {
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"10" validate:"gte=1"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5" validate:"gte=0"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"5m"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true" validate:"required"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Pagination holds listing defaults.
type Pagination struct {
	DefaultPageSize int `yaml:"default_page_size" env:"DEFAULT_PAGE_SIZE" env-default:"10" validate:"gte=1"`
}

// ErrNoConfigPath is returned by Path when neither source names a file.
var ErrNoConfigPath = errors.New("config path is not set: use --config flag or CONFIG_PATH env var")

// Path resolves the config file location from the environment or flags.
func Path() (string, error) {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		return "", ErrNoConfigPath
	}
	return configPath, nil
}

// Load reads the YAML file at path, applies env overrides and defaults,
// and validates the result.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	// cleanenv.ReadConfig reads the YAML file and populates the struct.
	// It also reads any env:"..." tagged fields from the environment,
	// and enforces env-required:"true" constraints.
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// MustLoad reads, validates, and returns the application config.
//
// Functions prefixed with "Must" are allowed to exit on failure: if this
// function returns, the config is valid.
func MustLoad() *Config {
	configPath, err := Path()
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}
