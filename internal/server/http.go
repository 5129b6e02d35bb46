package server

import (
	"ServiceDesk/internal/biz"
	"ServiceDesk/internal/conf"
	"ServiceDesk/internal/server/middleware"
	"ServiceDesk/internal/service"
	pkglog "ServiceDesk/pkg/log"

	"github.com/go-chi/cors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPServer new an HTTP server.
func NewHTTPServer(
	c *conf.Server,
	limiter *biz.RateLimiterUseCase,
	customers *service.CustomerService,
	workOrders *service.WorkOrderService,
	analytics *service.AnalyticsService,
	health *service.HealthService,
	gatherer prometheus.Gatherer,
	logger log.Logger,
) *http.Server {
	logHelper := pkglog.NewLogHelper(logger)
	encodeError := NewErrorEncoder(logger)

	var opts = []http.ServerOption{
		// Filters run outermost first: logging sees rate limited and preflight requests too.
		http.Filter(
			middleware.Logging(logHelper),
			middleware.SecurityHeaders(),
			corsFilter(c.AllowedOrigins),
			middleware.RateLimit(limiter, encodeError, logHelper),
		),
		http.Middleware(
			recovery.Recovery(),
		),
		http.ErrorEncoder(encodeError),
	}
	if c.HTTP != nil {
		if c.HTTP.Network != "" {
			opts = append(opts, http.Network(c.HTTP.Network))
		}
		if c.HTTP.Addr != "" {
			opts = append(opts, http.Address(c.HTTP.Addr))
		}
		if c.HTTP.Timeout > 0 {
			opts = append(opts, http.Timeout(c.HTTP.Timeout))
		}
	}
	srv := http.NewServer(opts...)

	service.RegisterHealthHTTPServer(srv, health)
	service.RegisterCustomerHTTPServer(srv, customers)
	service.RegisterWorkOrderHTTPServer(srv, workOrders)
	service.RegisterAnalyticsHTTPServer(srv, analytics)
	srv.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return srv
}

func corsFilter(origins []string) http.FilterFunc {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", "X-Correlation-ID"},
		ExposedHeaders:   []string{"X-Correlation-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
