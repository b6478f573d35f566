package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageDriverMemory = "memory"
	StorageDriverSQLite = "sqlite"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Seed          SeedConfig          `mapstructure:"seed"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	ValidateRequests  bool          `mapstructure:"validate_requests"`
}

// StorageConfig selects where the ledger and budget collections live.
// Both drivers keep state for the lifetime of the process only.
type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=memory sqlite"`
	DSN    string `mapstructure:"dsn"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

type SeedConfig struct {
	Enabled bool  `mapstructure:"enabled"`
	Months  int   `mapstructure:"months"`
	Seed    int64 `mapstructure:"seed"`
}

// DefaultConfig is used for keys missing from both the config file and the
// environment.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8080,
			AllowedOrigins:    "*",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
			WriteTimeout:      15 * time.Second,
			ValidateRequests:  true,
		},
		Storage: StorageConfig{
			Driver: StorageDriverMemory,
			DSN:    "file::memory:?cache=shared",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
			Logging: LoggingConfig{Level: "info", Format: "text"},
		},
		Seed: SeedConfig{Enabled: false, Months: 5, Seed: 42},
	}
}

func LoadConfigFromEnv() *Config {
	def := DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("PORT", def.Server.Port),
			BaseURL:           getEnv("BASE_URL", def.Server.BaseURL),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", def.Server.AllowedOrigins),
			ReadHeaderTimeout: getEnvAsDuration("READ_HEADER_TIMEOUT", def.Server.ReadHeaderTimeout),
			ReadTimeout:       getEnvAsDuration("READ_TIMEOUT", def.Server.ReadTimeout),
			IdleTimeout:       getEnvAsDuration("IDLE_TIMEOUT", def.Server.IdleTimeout),
			WriteTimeout:      getEnvAsDuration("WRITE_TIMEOUT", def.Server.WriteTimeout),
			ValidateRequests:  getEnvAsBool("VALIDATE_REQUESTS", def.Server.ValidateRequests),
		},
		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", def.Storage.Driver),
			DSN:    getEnv("STORAGE_DSN", def.Storage.DSN),
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: getEnvAsBool("METRICS_ENABLED", def.Observability.Metrics.Enabled),
				Path:    getEnv("METRICS_PATH", def.Observability.Metrics.Path),
			},
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", def.Observability.Logging.Level),
				Format: getEnv("LOG_FORMAT", def.Observability.Logging.Format),
			},
		},
		Seed: SeedConfig{
			Enabled: getEnvAsBool("SEED_ENABLED", def.Seed.Enabled),
			Months:  getEnvAsInt("SEED_MONTHS", def.Seed.Months),
			Seed:    int64(getEnvAsInt("SEED_VALUE", int(def.Seed.Seed))),
		},
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if err := c.Observability.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("observability config: %v", err))
	}

	if c.Seed.Months < 0 {
		errs = append(errs, "seed config: months cannot be negative")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Port)
	}
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

// Origins returns the trimmed list of allowed CORS origins.
func (c *ServerConfig) Origins() []string {
	if c.AllowedOrigins == "" {
		return nil
	}
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *StorageConfig) Validate() error {
	switch c.Driver {
	case StorageDriverMemory:
		return nil
	case StorageDriverSQLite:
		if c.DSN == "" {
			return errors.New("dsn is required for the sqlite driver")
		}
		if !strings.Contains(c.DSN, ":memory:") && !strings.Contains(c.DSN, "mode=memory") {
			return errors.New("sqlite dsn must point at an in-memory database")
		}
		return nil
	default:
		return fmt.Errorf("unknown storage driver %q: must be one of memory, sqlite", c.Driver)
	}
}

func (c *ObservabilityConfig) Validate() error {
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("metrics path must start with /")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q", c.Logging.Format)
	}
	return nil
}
