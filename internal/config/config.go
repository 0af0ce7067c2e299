// Package config loads the report settings from the environment.
//
// Values are resolved from the OS environment, then an optional .env file in the working
// directory (which never overrides variables already set), then struct defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/couchcryptid/irrigation-report/internal/domain"
)

// Config holds all report settings, populated from environment variables.
type Config struct {
	LocationName string  `envconfig:"LOCATION_NAME" default:"Bengaluru"`
	LocationLat  float64 `envconfig:"LOCATION_LAT" default:"12.9716" validate:"gte=-90,lte=90"`
	LocationLon  float64 `envconfig:"LOCATION_LON" default:"77.5946" validate:"gte=-180,lte=180"`

	OutputPath  string `envconfig:"OUTPUT_PATH" default:"irrigation_data_visualization.html" validate:"required"`
	DaysBack    int    `envconfig:"DAYS_BACK" default:"1825" validate:"gte=0"`
	DaysForward int    `envconfig:"DAYS_FORWARD" default:"1825" validate:"gte=0"`
	NoiseSeed   string `envconfig:"NOISE_SEED"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=json text"`

	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080" validate:"required"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Kafka publishing is enabled when at least one broker is configured.
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"irrigation-mock-series"`

	// Mapbox geocoding configuration.
	MapboxToken     string        `envconfig:"MAPBOX_TOKEN"`
	MapboxEnabled   bool          `ignored:"true"`
	MapboxTimeout   time.Duration `envconfig:"MAPBOX_TIMEOUT" default:"5s"`
	MapboxCacheSize int           `envconfig:"MAPBOX_CACHE_SIZE" default:"1000" validate:"gt=0"`

	// Seed is the parsed NOISE_SEED; nil means a fresh seed per run.
	Seed *uint64 `ignored:"true"`
}

// Load reads configuration from the environment, applying defaults where unset.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{Type: ErrParsing, Message: "failed to process environment configuration", Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.SetSeed(cfg.NoiseSeed); err != nil {
		return nil, err
	}

	cfg.MapboxEnabled = cfg.MapboxToken != ""
	if v, ok := os.LookupEnv("MAPBOX_ENABLED"); ok && v != "" {
		cfg.MapboxEnabled = v == "true"
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, &ConfigError{Type: ErrValidation, Message: "MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set"}
	}

	return &cfg, nil
}

// Validate checks field constraints. Call it again after applying command-line
// overrides.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return &ConfigError{Type: ErrValidation, Message: "configuration validation failed", Err: err}
	}
	if c.ShutdownTimeout <= 0 {
		return &ConfigError{Type: ErrValidation, Message: "invalid SHUTDOWN_TIMEOUT: must be positive"}
	}
	if c.MapboxTimeout <= 0 {
		return &ConfigError{Type: ErrValidation, Message: "invalid MAPBOX_TIMEOUT: must be positive"}
	}
	return nil
}

// SetSeed parses a decimal uint64 seed. An empty string clears it.
func (c *Config) SetSeed(raw string) error {
	c.NoiseSeed = raw
	if raw == "" {
		c.Seed = nil
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return &ConfigError{Type: ErrValidation, Message: fmt.Sprintf("invalid NOISE_SEED %q", raw), Err: err}
	}
	c.Seed = &v
	return nil
}

// KafkaEnabled reports whether generated series should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Location returns the configured report location.
func (c *Config) Location() domain.Location {
	return domain.Location{Name: c.LocationName, Lat: c.LocationLat, Lon: c.LocationLon}
}
