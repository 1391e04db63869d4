package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Storage drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config holds the configuration settings for waypoint.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Geocoder: Provider selection and request pacing.
// - Storage: Where points are persisted.
// - Server: The port for `waypoint serve`.
// - Document: External tools used to read documents.
type Config struct {
	Env      string         `mapstructure:"env"`      // Env is the current environment: local, development, production.
	Geocoder GeocoderConfig `mapstructure:"geocoder"` // Geocoder configures address resolution.
	Storage  StorageConfig  `mapstructure:"storage"`  // Storage configures the point store.
	Server   ServerConfig   `mapstructure:"server"`   // Server configures the HTTP API.
	Document DocumentConfig `mapstructure:"document"` // Document configures text extraction.
}

// GeocoderConfig selects and tunes the geocoding provider.
type GeocoderConfig struct {
	Provider         string        `mapstructure:"provider"`          // google or nominatim
	APIKey           string        `mapstructure:"api_key"`           // Required for google
	BaseURL          string        `mapstructure:"base_url"`          // Alternative Nominatim endpoint
	UserAgent        string        `mapstructure:"user_agent"`        // Sent to Nominatim
	CountryQualifier string        `mapstructure:"country_qualifier"` // Appended to every query
	Language         string        `mapstructure:"language"`          // Preferred result language
	Region           string        `mapstructure:"region"`            // Region bias for google
	MinInterval      time.Duration `mapstructure:"min_interval"`      // Minimum spacing between requests
	Timeout          time.Duration `mapstructure:"timeout"`           // HTTP timeout per request
	RateLimit        int           `mapstructure:"rate_limit"`        // Requests per second for the google client
}

// StorageConfig selects the durable slot.
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // file, sqlite or memory
	Path   string `mapstructure:"path"`   // Empty means the user config dir
	Slot   string `mapstructure:"slot"`   // Slot name
}

// ServerConfig configures `waypoint serve`.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"` // browser origins allowed by CORS
}

// DocumentConfig configures document text extraction.
type DocumentConfig struct {
	PdfToTextPath string `mapstructure:"pdftotext_path"`
}

// ErrInvalidConfig is returned when a loaded value is outside its allowed set.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads configuration from defaults, an optional config file, an optional .env file
// in the working directory and WAYPOINT_* environment variables, in increasing precedence.
// An empty path looks for waypoint.{yaml,toml,json} in the working directory.
func Load(path string) (*Config, error) {
	// .env never overrides variables that are already set
	_ = gotenv.Load()

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("waypoint")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("WAYPOINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad is Load without a config file path. It panics on failure.
func MustLoad() *Config {
	cfg, err := Load("")
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("geocoder.provider", "nominatim")
	v.SetDefault("geocoder.api_key", "")
	v.SetDefault("geocoder.base_url", "")
	v.SetDefault("geocoder.user_agent", "")
	v.SetDefault("geocoder.country_qualifier", "Deutschland")
	v.SetDefault("geocoder.language", "de,en")
	v.SetDefault("geocoder.region", "de")
	v.SetDefault("geocoder.min_interval", time.Second)
	v.SetDefault("geocoder.timeout", 10*time.Second)
	v.SetDefault("geocoder.rate_limit", 0)
	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.slot", "lieferkarte_points_v1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("document.pdftotext_path", "pdftotext")
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverFile, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("%w: storage.driver must be file, sqlite or memory, got %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if strings.TrimSpace(c.Storage.Slot) == "" {
		return fmt.Errorf("%w: storage.slot must not be empty", ErrInvalidConfig)
	}
	if c.Geocoder.MinInterval < 0 {
		return fmt.Errorf("%w: geocoder.min_interval must not be negative", ErrInvalidConfig)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}

	return nil
}
