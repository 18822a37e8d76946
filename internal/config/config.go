package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageDynamoDB = "dynamodb"
	StorageMemory   = "memory"
)

type Config struct {
	Server struct {
		Addr            string        `mapstructure:"addr"`
		Mode            string        `mapstructure:"mode"`
		ReadTimeout     time.Duration `mapstructure:"read_timeout"`
		WriteTimeout    time.Duration `mapstructure:"write_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`

	// Redis backs the optional decision cache. An empty URL disables it.
	Redis struct {
		URL      string `mapstructure:"url"`
		PoolSize int    `mapstructure:"pool_size"`
	} `mapstructure:"redis"`

	Auth struct {
		// SigningCertificate selects where the issuer's PEM certificate is
		// loaded from. The first non-empty source wins: PEM, File, URL.
		SigningCertificate struct {
			PEM  string `mapstructure:"pem"`
			File string `mapstructure:"file"`
			URL  string `mapstructure:"url"`
		} `mapstructure:"signing_certificate"`
		Issuer   string        `mapstructure:"issuer"`
		Audience string        `mapstructure:"audience"`
		Leeway   time.Duration `mapstructure:"leeway"`
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"auth"`

	// Storage selects the todo repository: "dynamodb" or "memory".
	Storage struct {
		Driver string `mapstructure:"driver"`
	} `mapstructure:"storage"`

	DynamoDB struct {
		Table       string `mapstructure:"table"`
		UserIDIndex string `mapstructure:"user_id_index"`
		Region      string `mapstructure:"region"`
		Endpoint    string `mapstructure:"endpoint"`
	} `mapstructure:"dynamodb"`

	Observability struct {
		MetricsEnabled     bool    `mapstructure:"metrics_enabled"`
		TraceEnabled       bool    `mapstructure:"trace_enabled"`
		TracingEndpointURL string  `mapstructure:"tracing_endpoint_url"`
		SampleRatio        float64 `mapstructure:"sample_ratio"`
		ServiceVersion     string  `mapstructure:"service_version"`
		Environment        string  `mapstructure:"environment"`
		LogLevel           string  `mapstructure:"log_level"`
		Format             string  `mapstructure:"log_format"`
		LogSource          bool    `mapstructure:"log_source"`
	} `mapstructure:"observability"`

	CORS struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.pool_size", 10)
	// Empty defaults register the keys so AutomaticEnv overrides reach Unmarshal.
	v.SetDefault("auth.signing_certificate.pem", "")
	v.SetDefault("auth.signing_certificate.file", "")
	v.SetDefault("auth.signing_certificate.url", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.audience", "")
	v.SetDefault("auth.leeway", time.Duration(0))
	v.SetDefault("auth.cache_ttl", 5*time.Minute)
	v.SetDefault("storage.driver", StorageDynamoDB)
	v.SetDefault("dynamodb.table", "Todos")
	v.SetDefault("dynamodb.user_id_index", "UserIdIndex")
	v.SetDefault("dynamodb.region", "")
	v.SetDefault("dynamodb.endpoint", "")
	v.SetDefault("observability.metrics_enabled", true)
	v.SetDefault("observability.trace_enabled", false)
	v.SetDefault("observability.tracing_endpoint_url", "")
	v.SetDefault("observability.sample_ratio", 1.0)
	v.SetDefault("observability.service_version", "")
	v.SetDefault("observability.environment", "")
	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.log_format", "json")
	v.SetDefault("cors.allowed_origins", []string{"*"})
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		slog.Default().Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	return cfg
}

// Load reads config/config.yaml (or ./config.yaml), merges the optional
// config.<APP_ENV>.yaml on top and applies TODO_SERVICE_* overrides.
func Load() (*Config, error) {
	v := viper.New()

	logger := slog.Default()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("TODO_SERVICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		logger.Info("No config file found, using defaults and environment")
	}

	if env := os.Getenv("APP_ENV"); env != "" {
		v.SetConfigName(fmt.Sprintf("config.%s", env))
		if err := v.MergeInConfig(); err != nil {
			logger.Info("No environment-specific config (optional)", slog.String("env", env))
		} else {
			logger.Info("Environment-specific config loaded", slog.String("env", env))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings the service cannot start without.
func (c *Config) Validate() error {
	sc := c.Auth.SigningCertificate
	if sc.PEM == "" && sc.File == "" && sc.URL == "" {
		return ErrMissingSigningCertificate
	}
	switch c.Storage.Driver {
	case StorageMemory:
		return nil
	case StorageDynamoDB:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorageDriver, c.Storage.Driver)
	}
	if c.DynamoDB.Table == "" {
		return ErrMissingTable
	}
	if c.DynamoDB.UserIDIndex == "" {
		return ErrMissingUserIDIndex
	}
	return nil
}
