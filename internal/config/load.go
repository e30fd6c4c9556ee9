package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and optionally a
// config file. Environment variables take precedence over values from the
// config file. Returns a populated Config struct or an error if
// loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config file: ./config.yaml or a path from MVV_CONFIG_FILE.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; env vars and defaults carry the load.
	}

	// Environment variables use the MVV_ prefix with underscores for
	// nesting, e.g. MVV_SERVER_PORT, MVV_WORKER_INTERNAL_TOKEN.
	v.SetEnvPrefix("MVV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults establishes sensible defaults so a bare environment still
// yields a runnable local configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.base_url", "http://localhost:8080")

	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.result_ttl", 7*24*time.Hour)

	v.SetDefault("worker.base_url", "http://localhost:8080")
	v.SetDefault("worker.webhook_url", "http://localhost:8080/internal/webhook-task-complete")
	v.SetDefault("worker.internal_token", "local-dev-internal-token")
	v.SetDefault("worker.dispatch_timeout", 5*time.Second)
	v.SetDefault("worker.webhook_timeout", 10*time.Second)

	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)

	v.SetDefault("retention.enabled", false)
	v.SetDefault("retention.schedule", "@hourly")
	v.SetDefault("retention.max_age", 24*time.Hour)
}

// bindEnvKeys explicitly binds each known key so AutomaticEnv sees
// variables even when the key never appears in a config file.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"server.port", "server.log_level", "server.base_url",
		"store.backend", "store.redis_addr", "store.redis_db",
		"store.postgres_url", "store.result_ttl",
		"worker.base_url", "worker.webhook_url", "worker.internal_token",
		"worker.dispatch_timeout", "worker.webhook_timeout",
		"llm.gemini_api_key", "llm.model_name", "llm.max_retries",
		"llm.retry_delay_seconds",
		"retention.enabled", "retention.schedule", "retention.max_age",
	}
	for _, key := range keys {
		// BindEnv only errors on an empty key.
		_ = v.BindEnv(key)
	}
}
