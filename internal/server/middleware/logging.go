// Package middleware provides the HTTP filters wrapped around every route.
package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	pkglog "ServiceDesk/pkg/log"

	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// statusRecorder remembers the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Logging returns a filter that logs every request with its correlation id.
// The id is taken from the X-Correlation-ID header or generated, stored in
// the request context and echoed on the response. Requests slower than
// pkglog.SlowRequestThresholdMs are reported again as slow.
//
// Output example:
//
//	🟢 GET /v1/customers - 200 (12ms) | correlation_id: 0b6e...
//	🐌 Slow request detected | GET /v1/analytics/order-frequency | 1422ms (threshold: 1000ms)
func Logging(logger *pkglog.LogHelper) khttp.FilterFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			startTime := time.Now()

			correlationID := strings.TrimSpace(req.Header.Get(pkglog.CorrelationHeader))
			if correlationID == "" {
				correlationID = pkglog.NewCorrelationID()
			}
			w.Header().Set(pkglog.CorrelationHeader, correlationID)

			ip := ClientIP(req)
			ctx := pkglog.WithRequestContext(req.Context(), correlationID, ip)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, req.WithContext(ctx))

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			path := req.URL.Path
			if req.URL.RawQuery != "" {
				path = path + "?" + req.URL.RawQuery
			}
			logger.RequestWithContext(ctx, req.Method, path, status, time.Since(startTime).Milliseconds(),
				"ip", ip,
				"user_agent", req.UserAgent(),
			)
		})
	}
}

// ClientIP extracts the client address.
// Priority: X-Real-IP > X-Forwarded-For (first hop) > RemoteAddr.
func ClientIP(req *http.Request) string {
	if ip := strings.TrimSpace(req.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	if forwarded := req.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if host, _, err := net.SplitHostPort(req.RemoteAddr); err == nil {
		return host
	}
	return req.RemoteAddr
}
