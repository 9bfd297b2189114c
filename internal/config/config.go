package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"    validate:"required"`
	Queue    QueueConfig    `mapstructure:"queue"    validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Task     TaskConfig     `mapstructure:"task"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// RedisConfig contains connection settings for Redis, which carries the
// task descriptor channels and the worker callback channel.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"   validate:"gte=0"`
}

// QueueConfig selects and configures the task queue driver.
type QueueConfig struct {
	// Driver selects the publisher implementation: "redis" publishes task
	// descriptors on Redis pub/sub channels, "amqp" on RabbitMQ queues.
	Driver string `mapstructure:"driver" validate:"required,oneof=redis amqp"`

	// AMQPURL is the broker URL, required when Driver is "amqp".
	AMQPURL string `mapstructure:"amqp_url" validate:"required_if=Driver amqp"`

	// ChannelPrefix prefixes the per-kind channel names (default "task").
	ChannelPrefix string `mapstructure:"channel_prefix"`

	// CallbackChannel is the channel on which workers report progress and
	// terminal events (default "task:events").
	CallbackChannel string `mapstructure:"callback_channel"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains settings for the development worker's Gemini client.
// Only the worker binary reads this section; the API server never calls
// the LLM directly.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name"`
	MaxRetries        int    `mapstructure:"max_retries"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds"`
}

// TaskConfig tunes the task lifecycle policies of the server.
type TaskConfig struct {
	// PendingTaskAgeMinutes is how long a task may stay PENDING before the
	// reconciliation sweep marks it FAILED. Zero disables the sweep.
	PendingTaskAgeMinutes int `mapstructure:"pending_task_age_minutes" validate:"gte=0"`

	// SweepIntervalMinutes is how often the sweep runs (default 5).
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes" validate:"gte=0"`
}
