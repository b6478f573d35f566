package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/budget-ledger/internal"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	seedData   bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "budget-ledger",
	Short: "Budget Ledger",
	Long:  `Records spending transactions and reports them against monthly and per-category budgets.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*internal.Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	// Check if we're running in Docker environment
	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		// Load configuration from environment variables (Docker deployment)
		cfg := internal.LoadConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("error validating config from environment: %w", err)
		}
		return cfg, nil
	}

	// Load configuration from file (development)
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, internal.DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys the
// config file leaves out.
func setDefaults(v *viper.Viper, def *internal.Config) {
	v.SetDefault("http_server.port", def.Server.Port)
	v.SetDefault("http_server.base_url", def.Server.BaseURL)
	v.SetDefault("http_server.allowed_origins", def.Server.AllowedOrigins)
	v.SetDefault("http_server.read_header_timeout", def.Server.ReadHeaderTimeout)
	v.SetDefault("http_server.read_timeout", def.Server.ReadTimeout)
	v.SetDefault("http_server.idle_timeout", def.Server.IdleTimeout)
	v.SetDefault("http_server.write_timeout", def.Server.WriteTimeout)
	v.SetDefault("http_server.validate_requests", def.Server.ValidateRequests)
	v.SetDefault("storage.driver", def.Storage.Driver)
	v.SetDefault("storage.dsn", def.Storage.DSN)
	v.SetDefault("observability.metrics.enabled", def.Observability.Metrics.Enabled)
	v.SetDefault("observability.metrics.path", def.Observability.Metrics.Path)
	v.SetDefault("observability.logging.level", def.Observability.Logging.Level)
	v.SetDefault("observability.logging.format", def.Observability.Logging.Format)
	v.SetDefault("seed.enabled", def.Seed.Enabled)
	v.SetDefault("seed.months", def.Seed.Months)
	v.SetDefault("seed.seed", def.Seed.Seed)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", ".", "Directory containing config.yml")
	rootCmd.PersistentFlags().BoolVar(&seedData, "seed", false, "Load deterministic sample data on startup")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(exportCmd)
}
