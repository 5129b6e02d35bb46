package service

import (
	"context"
	"time"

	"ServiceDesk/internal/conf"
	"ServiceDesk/internal/event"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
)

const (
	statusHealthy  = "healthy"
	statusReady    = "ready"
	statusDegraded = "degraded"
	statusNotReady = "not_ready"

	dependencyUp   = "up"
	dependencyDown = "down"

	pingTimeout = 2 * time.Second
)

// DependencyChecker pings the storage backends.
type DependencyChecker interface {
	PingDatabase(ctx context.Context) error
	PingRedis(ctx context.Context) error
}

// HealthReply is the liveness answer.
type HealthReply struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

// CircuitReply describes the event publisher circuit.
type CircuitReply struct {
	State    string     `json:"state"`
	Failures int        `json:"failures"`
	OpenedAt *time.Time `json:"opened_at"`
}

// ReadyReply is the readiness answer.
type ReadyReply struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
	EventCircuit CircuitReply      `json:"event_circuit"`
}

// HealthService serves /health and /ready.
type HealthService struct {
	app     *conf.App
	deps    DependencyChecker
	breaker *event.Breaker
	logger  *log.Helper
}

// NewHealthService creates a new HealthService instance.
func NewHealthService(app *conf.App, deps DependencyChecker, breaker *event.Breaker, logger log.Logger) *HealthService {
	if app == nil {
		app = &conf.App{}
	}
	return &HealthService{
		app:     app,
		deps:    deps,
		breaker: breaker,
		logger:  log.NewHelper(log.With(logger, "module", "service/health")),
	}
}

// Health reports that the process is alive.
func (s *HealthService) Health(context.Context) *HealthReply {
	return &HealthReply{
		Status:      statusHealthy,
		Version:     s.app.Version,
		Environment: s.app.Environment,
	}
}

// Ready checks the database, Redis and the event circuit. It returns false
// only when the database is unreachable.
func (s *HealthService) Ready(ctx context.Context) (*ReadyReply, bool) {
	reply := &ReadyReply{
		Status:       statusReady,
		Dependencies: map[string]string{"database": dependencyUp, "redis": dependencyUp},
	}

	dbErr := s.ping(ctx, s.deps.PingDatabase)
	if dbErr != nil {
		s.logger.Errorw("msg", "readiness: database unreachable", "error", dbErr)
		reply.Dependencies["database"] = dependencyDown
	}
	if err := s.ping(ctx, s.deps.PingRedis); err != nil {
		s.logger.Warnw("msg", "readiness: redis unreachable", "error", err)
		reply.Dependencies["redis"] = dependencyDown
		reply.Status = statusDegraded
	}

	snap := s.breaker.Snapshot()
	reply.EventCircuit = CircuitReply{State: snap.State.String(), Failures: snap.Failures}
	if !snap.OpenedAt.IsZero() {
		openedAt := snap.OpenedAt.UTC()
		reply.EventCircuit.OpenedAt = &openedAt
	}
	if snap.State != event.Closed {
		reply.Status = statusDegraded
	}

	if dbErr != nil {
		reply.Status = statusNotReady
		return reply, false
	}
	return reply, true
}

func (s *HealthService) ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}

// RegisterHealthHTTPServer registers /health and /ready on s.
func RegisterHealthHTTPServer(s *http.Server, srv *HealthService) {
	r := s.Route("/")
	r.GET("/health", func(ctx http.Context) error {
		return ctx.Result(200, srv.Health(ctx))
	})
	r.GET("/ready", func(ctx http.Context) error {
		reply, ok := srv.Ready(ctx)
		if !ok {
			return ctx.Result(503, reply)
		}
		return ctx.Result(200, reply)
	})
}
