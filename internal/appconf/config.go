// Package appconf loads and validates the catalogue configuration.
//
// Configuration comes from an optional YAML file, then from environment
// variables (optionally seeded from a .env file). Defaults cover every field
// so an empty file is a valid configuration.
package appconf

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment is the deployment environment the process runs in.
type Environment int

const (
	Development Environment = iota
	Test
	Production
)

var ErrInvalidEnvironment = errors.New("invalid environment")

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// ParseEnvironment accepts the names returned by String, case-insensitively.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "development", "dev":
		return Development, nil
	case "test":
		return Test, nil
	case "production", "prod":
		return Production, nil
	}
	return Development, fmt.Errorf("%w: %q", ErrInvalidEnvironment, s)
}

func (e *Environment) UnmarshalYAML(value *yaml.Node) error {
	env, err := ParseEnvironment(value.Value)
	if err != nil {
		return err
	}
	*e = env
	return nil
}

// RoutingConfig holds the router defaults used when an input document does
// not carry its own routing_settings.
type RoutingConfig struct {
	BusWaitTime int     `yaml:"bus_wait_time" validate:"gte=1,lte=1000"`
	BusVelocity float64 `yaml:"bus_velocity" validate:"gte=1,lte=1000"`
}

// GTFSConfig controls how static GTFS feeds are fetched.
type GTFSConfig struct {
	AuthHeaderKey   string `yaml:"auth_header_key"`
	AuthHeaderValue string `yaml:"auth_header_value"`
	MaxSizeBytes    int64  `yaml:"max_size_bytes" validate:"gt=0"`
}

type Config struct {
	Env            Environment   `yaml:"env"`
	Verbose        bool          `yaml:"verbose"`
	Routing        RoutingConfig `yaml:"routing"`
	Workers        int           `yaml:"workers" validate:"gte=0,lte=1024"`
	RouteCacheSize int           `yaml:"route_cache_size" validate:"gte=0"`
	NearbyRadius   float64       `yaml:"nearby_radius" validate:"gt=0"`
	MetricsFile    string        `yaml:"metrics_file"`
	GTFS           GTFSConfig    `yaml:"gtfs"`
}

// Default returns the configuration used when nothing else is provided.
func Default() Config {
	return Config{
		Env: Development,
		Routing: RoutingConfig{
			BusWaitTime: 6,
			BusVelocity: 40,
		},
		RouteCacheSize: 1024,
		NearbyRadius:   500,
		GTFS: GTFSConfig{
			MaxSizeBytes: 200 * 1024 * 1024,
		},
	}
}

// Load builds a Config from Default, the YAML file at path (skipped when
// path is empty) and CATALOGUE_* environment variables, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("error parsing config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnvFile copies the variables in a .env file into the process
// environment without overriding variables that are already set.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading env file %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("CATALOGUE_ENV"); v != "" {
		env, err := ParseEnvironment(v)
		if err != nil {
			return err
		}
		cfg.Env = env
	}
	if v := os.Getenv("CATALOGUE_VERBOSE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CATALOGUE_VERBOSE: %w", err)
		}
		cfg.Verbose = b
	}
	cfg.Workers = getEnvInt("CATALOGUE_WORKERS", cfg.Workers)
	cfg.RouteCacheSize = getEnvInt("CATALOGUE_ROUTE_CACHE_SIZE", cfg.RouteCacheSize)
	cfg.MetricsFile = getEnv("CATALOGUE_METRICS_FILE", cfg.MetricsFile)
	cfg.GTFS.AuthHeaderKey = getEnv("CATALOGUE_GTFS_AUTH_HEADER_KEY", cfg.GTFS.AuthHeaderKey)
	cfg.GTFS.AuthHeaderValue = getEnv("CATALOGUE_GTFS_AUTH_HEADER_VALUE", cfg.GTFS.AuthHeaderValue)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
