// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct, shared by the API
// server and the worker manager.
type Config struct {
	App          AppConfig               `mapstructure:"app"`
	Server       ServerConfig            `mapstructure:"server"`
	Camunda      CamundaConfig           `mapstructure:"camunda"`
	Database     DatabaseConfig          `mapstructure:"database"`
	Workers      map[string]WorkerConfig `mapstructure:"workers"`
	Auth         AuthConfig              `mapstructure:"auth"`
	LLM          LLMConfig               `mapstructure:"llm"`
	Cache        CacheConfig             `mapstructure:"cache"`
	Share        ShareConfig             `mapstructure:"share"`
	Integrations IntegrationConfig       `mapstructure:"integrations"`
	Registry     RegistryConfig          `mapstructure:"registry"`
	Logging      LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig drives the public HTTP API.
type ServerConfig struct {
	Address         string    `mapstructure:"address"`
	MetricsAddress  string    `mapstructure:"metrics_address"`
	ReadTimeout     int       `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int       `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int       `mapstructure:"shutdown_timeout"` // milliseconds
	TraceSampleRate float64   `mapstructure:"trace_sample_rate"`
	CORS            CORS      `mapstructure:"cors"`
	RateLimit       RateLimit `mapstructure:"rate_limit"`
}

type CORS struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimit caps itinerary generation per client address.
type RateLimit struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	ProcessFile    string `mapstructure:"process_file"`
	DeployOnStart  bool   `mapstructure:"deploy_on_start"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
	AutoMigrate    bool   `mapstructure:"auto_migrate"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
	Enabled   bool     `mapstructure:"enabled"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// AuthConfig holds account token settings.
type AuthConfig struct {
	JWT struct {
		Secret string `mapstructure:"secret"`
		TTL    string `mapstructure:"ttl"`
		Issuer string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`
}

// LLMConfig selects and tunes the itinerary model.
type LLMConfig struct {
	Provider       string  `mapstructure:"provider"` // openai | gemini
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	Temperature    float64 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	MaxAttempts    int     `mapstructure:"max_attempts"`
	AttemptTimeout int     `mapstructure:"attempt_timeout"` // milliseconds
	RetryDelay     int     `mapstructure:"retry_delay"`     // milliseconds
}

// CacheConfig holds Redis TTLs.
type CacheConfig struct {
	ItineraryTTL int `mapstructure:"itinerary_ttl"` // seconds
}

// ShareConfig is used to build links embedded in exported documents.
type ShareConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// IntegrationConfig holds settings for outbound delivery channels.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
	} `mapstructure:"aws"`
}

// RegistryConfig points at the activity registry consulted at worker start.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
