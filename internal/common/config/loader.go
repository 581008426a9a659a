// internal/common/config/loader.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "registration-pipeline/internal/common/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "REGISTRATION"

// Load reads configs/config.yaml, merges config.<env>.yaml on top and applies
// REGISTRATION_* environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only covers keys viper already knows about.
	for _, key := range []string{
		"remote.endpoint_url", "remote.mode", "remote.timeout",
		"form.source_url", "form.fields_path",
		"store.backend", "store.key",
		"store.redis.address", "store.redis.password", "store.redis.db",
		"store.postgres.host", "store.postgres.port", "store.postgres.database",
		"store.postgres.user", "store.postgres.password",
		"logging.level", "logging.format",
		"metrics.enabled", "metrics.address",
	} {
		_ = v.BindEnv(key)
	}
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "registration-pipeline"
	}

	if cfg.Remote.Mode == "" {
		cfg.Remote.Mode = RemoteModeOpaque
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = StoreBackendMemory
	}
	if cfg.Store.Key == "" {
		cfg.Store.Key = "registrations"
	}
	if cfg.Store.Postgres.Port == 0 {
		cfg.Store.Postgres.Port = 5432
	}
	if cfg.Store.Postgres.MaxConnections == 0 {
		cfg.Store.Postgres.MaxConnections = 5
	}
	if cfg.Store.Postgres.MaxIdle == 0 {
		cfg.Store.Postgres.MaxIdle = 2
	}
	if cfg.Store.Postgres.SSLMode == "" {
		cfg.Store.Postgres.SSLMode = "disable"
	}
	if cfg.Store.Postgres.Table == "" {
		cfg.Store.Postgres.Table = "kv_store"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9464"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Remote.EndpointURL == "" {
		return apperrors.NewConfigInvalidError("remote.endpoint_url is required")
	}
	if u, err := url.Parse(cfg.Remote.EndpointURL); err != nil || u.Scheme == "" || u.Host == "" {
		return apperrors.NewConfigInvalidError(fmt.Sprintf("remote.endpoint_url %q is not an absolute URL", cfg.Remote.EndpointURL))
	}

	switch cfg.Remote.Mode {
	case RemoteModeOpaque, RemoteModeCORS:
	default:
		return apperrors.NewConfigInvalidError(fmt.Sprintf("remote.mode %q must be %q or %q", cfg.Remote.Mode, RemoteModeOpaque, RemoteModeCORS))
	}
	if cfg.Remote.Timeout < 0 {
		return apperrors.NewConfigInvalidError("remote.timeout must not be negative")
	}

	switch cfg.Store.Backend {
	case StoreBackendMemory:
	case StoreBackendRedis:
		if cfg.Store.Redis.Address == "" {
			return apperrors.NewConfigInvalidError("store.redis.address is required")
		}
	case StoreBackendPostgres:
		if cfg.Store.Postgres.Host == "" {
			return apperrors.NewConfigInvalidError("store.postgres.host is required")
		}
		if cfg.Store.Postgres.Database == "" {
			return apperrors.NewConfigInvalidError("store.postgres.database is required")
		}
		if cfg.Store.Postgres.User == "" {
			return apperrors.NewConfigInvalidError("store.postgres.user is required")
		}
	default:
		return apperrors.NewConfigInvalidError(fmt.Sprintf("unknown store.backend %q", cfg.Store.Backend))
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
