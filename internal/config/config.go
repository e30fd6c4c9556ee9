package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Store     StoreConfig     `mapstructure:"store" validate:"required"`
	Worker    WorkerConfig    `mapstructure:"worker" validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Retention RetentionConfig `mapstructure:"retention"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// BaseURL is the externally visible address used when building polling URLs.
	BaseURL string `mapstructure:"base_url"`
}

// StoreConfig selects and configures the blob store backend that holds
// task result and progress records.
type StoreConfig struct {
	// Backend is one of "memory", "redis" or "postgres".
	Backend string `mapstructure:"backend" validate:"required,oneof=memory redis postgres"`
	// RedisAddr is the host:port of the Redis server (redis backend only).
	RedisAddr string `mapstructure:"redis_addr"`
	// RedisDB selects the Redis logical database.
	RedisDB int `mapstructure:"redis_db"`
	// PostgresURL is the connection string for the postgres backend.
	PostgresURL string `mapstructure:"postgres_url"`
	// ResultTTL bounds how long result blobs live in backends that support
	// expiry (redis). Zero means no expiry.
	ResultTTL time.Duration `mapstructure:"result_ttl"`
}

// WorkerConfig contains settings for task dispatch and webhook delivery.
type WorkerConfig struct {
	// BaseURL is where the gateway dispatches background work. For a
	// single-binary deployment this is the server's own address.
	BaseURL string `mapstructure:"base_url" validate:"required"`
	// WebhookURL is the completion callback endpoint workers report to.
	WebhookURL string `mapstructure:"webhook_url" validate:"required"`
	// InternalToken authenticates dispatch and webhook calls between
	// components. Shared-secret header, not user-facing auth.
	InternalToken string `mapstructure:"internal_token" validate:"required,min=16"`
	// DispatchTimeout bounds the gateway's dispatch call. A timeout here is
	// not a failure: the worker keeps running past it.
	DispatchTimeout time.Duration `mapstructure:"dispatch_timeout"`
	// WebhookTimeout bounds the worker's completion callback.
	WebhookTimeout time.Duration `mapstructure:"webhook_timeout"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name"`
	MaxRetries        int    `mapstructure:"max_retries"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds"`
}

// RetentionConfig controls the background sweeper that removes aged-out
// task blobs.
type RetentionConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Schedule is a cron expression; defaults to hourly when empty.
	Schedule string `mapstructure:"schedule"`
	// MaxAge is how old a task blob may grow before the sweeper deletes it.
	MaxAge time.Duration `mapstructure:"max_age"`
}
