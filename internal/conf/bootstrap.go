// Package conf provides configuration management using Viper.
// It supports loading configuration from YAML files and environment variables.
package conf

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported deployment environments.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Supported event backends.
const (
	EventBackendRedis = "redis"
	EventBackendKafka = "kafka"
)

var (
	allowedEnvironments = []string{EnvDevelopment, EnvStaging, EnvProduction, EnvTest}
	allowedLogLevels    = []string{"debug", "info", "warn", "error"}
)

// NewBootstrap creates and initializes a Bootstrap configuration.
// It loads configuration from the specified config file path, applies defaults,
// and allows overrides from environment variables prefixed with SERVICEDESK_.
//
// Configuration priority: Environment variables > Config file > Defaults
//
// Required environment variables:
//   - DATABASE_URL, MYSQL_DSN or SERVICEDESK_DATA_DATABASE_SOURCE: MySQL connection string
func NewBootstrap(configPath string) (*Bootstrap, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("SERVICEDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Plain names kept for compatibility with existing deployment manifests.
	_ = v.BindEnv("data.database.source", "SERVICEDESK_DATA_DATABASE_SOURCE", "DATABASE_URL", "MYSQL_DSN")
	_ = v.BindEnv("data.redis.addr", "SERVICEDESK_DATA_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("app.environment", "SERVICEDESK_APP_ENVIRONMENT", "ENVIRONMENT")
	_ = v.BindEnv("log.level", "SERVICEDESK_LOG_LEVEL", "LOG_LEVEL")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	environment := strings.ToLower(v.GetString("app.environment"))
	logEnv := v.GetString("log.env")
	if logEnv == "" {
		logEnv = environment
	}

	bc := &Bootstrap{
		App: &App{
			Name:        v.GetString("app.name"),
			Version:     v.GetString("app.version"),
			Environment: environment,
		},
		Server: &Server{
			HTTP: &Transport{
				Network: v.GetString("server.http.network"),
				Addr:    v.GetString("server.http.addr"),
				Timeout: v.GetDuration("server.http.timeout"),
			},
			GRPC: &Transport{
				Network: v.GetString("server.grpc.network"),
				Addr:    v.GetString("server.grpc.addr"),
				Timeout: v.GetDuration("server.grpc.timeout"),
			},
			AllowedOrigins:     stringList(v, "server.allowed_origins"),
			RateLimitPerMinute: v.GetInt("server.rate_limit_per_minute"),
		},
		Data: &Data{
			Database: &Database{
				Driver:       v.GetString("data.database.driver"),
				Source:       v.GetString("data.database.source"),
				MaxIdleConns: v.GetInt("data.database.max_idle_conns"),
				MaxOpenConns: v.GetInt("data.database.max_open_conns"),
			},
			Redis: &Redis{
				Addr:         v.GetString("data.redis.addr"),
				Password:     v.GetString("data.redis.password"),
				DB:           v.GetInt("data.redis.db"),
				ReadTimeout:  v.GetDuration("data.redis.read_timeout"),
				WriteTimeout: v.GetDuration("data.redis.write_timeout"),
			},
		},
		Events: &Events{
			Backend:          strings.ToLower(v.GetString("events.backend")),
			CompletionStream: v.GetString("events.completion_stream"),
			DomainStream:     v.GetString("events.domain_stream"),
			StreamMaxLen:     v.GetInt64("events.stream_max_len"),
			KafkaBrokers:     stringList(v, "events.kafka_brokers"),
			FailureThreshold: v.GetInt("events.failure_threshold"),
			Cooldown:         v.GetDuration("events.cooldown"),
			DeliveryTimeout:  v.GetDuration("events.delivery_timeout"),
		},
		Analytics: &Analytics{
			CacheTTL:        v.GetDuration("analytics.cache_ttl"),
			RefreshInterval: v.GetDuration("analytics.refresh_interval"),
		},
		Log: &Log{
			Level:      strings.ToLower(v.GetString("log.level")),
			Format:     v.GetString("log.format"),
			Env:        logEnv,
			OutputFile: v.GetString("log.output_file"),
		},
	}

	if err := Validate(bc); err != nil {
		return nil, err
	}

	return bc, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ServiceDesk")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", EnvDevelopment)

	v.SetDefault("server.http.network", "tcp")
	v.SetDefault("server.http.addr", ":8000")
	v.SetDefault("server.http.timeout", 30*time.Second)

	v.SetDefault("server.grpc.network", "tcp")
	v.SetDefault("server.grpc.addr", ":9000")
	v.SetDefault("server.grpc.timeout", 30*time.Second)

	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit_per_minute", 100)

	v.SetDefault("data.database.driver", "mysql")
	// data.database.source is required from environment
	v.SetDefault("data.database.max_idle_conns", 5)
	v.SetDefault("data.database.max_open_conns", 15)

	v.SetDefault("data.redis.addr", "127.0.0.1:6379")
	v.SetDefault("data.redis.db", 0)
	v.SetDefault("data.redis.read_timeout", 200*time.Millisecond)
	v.SetDefault("data.redis.write_timeout", 200*time.Millisecond)

	v.SetDefault("events.backend", EventBackendRedis)
	v.SetDefault("events.completion_stream", "order-completion-stream")
	v.SetDefault("events.domain_stream", "service-domain-stream")
	v.SetDefault("events.stream_max_len", 100000)
	v.SetDefault("events.failure_threshold", 5)
	v.SetDefault("events.cooldown", 30*time.Second)
	v.SetDefault("events.delivery_timeout", 500*time.Millisecond)

	v.SetDefault("analytics.cache_ttl", 10*time.Minute)
	v.SetDefault("analytics.refresh_interval", 5*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// stringList reads a list value that may also arrive as a comma separated env string.
func stringList(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks that all required configuration fields are present and valid.
// It returns a single error listing every problem found.
func Validate(bc *Bootstrap) error {
	var missingFields []string
	var invalid []string

	if bc.Data == nil || bc.Data.Database == nil || bc.Data.Database.Source == "" {
		missingFields = append(missingFields, "data.database.source (DATABASE_URL)")
	}

	if bc.App != nil && !slices.Contains(allowedEnvironments, bc.App.Environment) {
		invalid = append(invalid, fmt.Sprintf("app.environment must be one of %v, got %q", allowedEnvironments, bc.App.Environment))
	}

	if bc.Log != nil && !slices.Contains(allowedLogLevels, bc.Log.Level) {
		invalid = append(invalid, fmt.Sprintf("log.level must be one of %v, got %q", allowedLogLevels, bc.Log.Level))
	}

	if bc.App.IsProduction() && bc.Server != nil && slices.Contains(bc.Server.AllowedOrigins, "*") {
		invalid = append(invalid, "server.allowed_origins must not contain the wildcard origin in production")
	}

	if bc.Server != nil && bc.Server.RateLimitPerMinute < 0 {
		invalid = append(invalid, "server.rate_limit_per_minute must not be negative")
	}

	if e := bc.Events; e != nil {
		if e.FailureThreshold < 1 {
			invalid = append(invalid, "events.failure_threshold must be at least 1")
		}
		if e.Cooldown <= 0 {
			invalid = append(invalid, "events.cooldown must be positive")
		}
		if e.DeliveryTimeout <= 0 {
			invalid = append(invalid, "events.delivery_timeout must be positive")
		}
		switch e.Backend {
		case EventBackendRedis:
		case EventBackendKafka:
			if len(e.KafkaBrokers) == 0 {
				invalid = append(invalid, "events.kafka_brokers is required for the kafka backend")
			}
		default:
			invalid = append(invalid, fmt.Sprintf("events.backend must be redis or kafka, got %q", e.Backend))
		}
	}

	var problems []string
	if len(missingFields) > 0 {
		problems = append(problems, fmt.Sprintf("missing required configuration fields: %s", strings.Join(missingFields, ", ")))
	}
	if len(invalid) > 0 {
		problems = append(problems, fmt.Sprintf("invalid configuration: %s", strings.Join(invalid, "; ")))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}

	return nil
}
