package conf

import "time"

// Bootstrap is the root configuration tree.
type Bootstrap struct {
	App       *App
	Server    *Server
	Data      *Data
	Events    *Events
	Analytics *Analytics
	Log       *Log
}

// App identifies the running service.
type App struct {
	Name        string
	Version     string
	Environment string
}

// IsProduction reports whether the service runs in the production environment.
func (a *App) IsProduction() bool {
	return a != nil && a.Environment == EnvProduction
}

// Server holds the transport settings.
type Server struct {
	HTTP               *Transport
	GRPC               *Transport
	AllowedOrigins     []string
	RateLimitPerMinute int
}

// Transport configures a single listener.
type Transport struct {
	Network string
	Addr    string
	Timeout time.Duration
}

// Data holds the storage settings.
type Data struct {
	Database *Database
	Redis    *Redis
}

// Database configures the MySQL connection pool.
type Database struct {
	Driver       string
	Source       string
	MaxIdleConns int
	MaxOpenConns int
}

// Redis configures the Redis client used for caching, rate limiting and event streams.
type Redis struct {
	Addr         string
	Password     string
	DB           int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Events configures the domain event publisher and its circuit breaker.
type Events struct {
	// Backend is either "redis" (streams) or "kafka".
	Backend          string
	CompletionStream string
	DomainStream     string
	// StreamMaxLen caps Redis streams with approximate trimming; 0 disables trimming.
	StreamMaxLen     int64
	KafkaBrokers     []string
	FailureThreshold int
	Cooldown         time.Duration
	DeliveryTimeout  time.Duration
}

// Analytics configures report caching.
type Analytics struct {
	CacheTTL        time.Duration
	RefreshInterval time.Duration
}

// Log configures the zap logger.
type Log struct {
	Level      string
	Format     string
	Env        string
	OutputFile string
}
