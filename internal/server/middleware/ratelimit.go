package middleware

import (
	"context"
	"net/http"

	pkglog "ServiceDesk/pkg/log"

	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// Limiter decides whether a client may issue another request.
type Limiter interface {
	Check(ctx context.Context, client string) error
}

// RateLimit rejects requests from clients over their per-minute budget. The
// rejection is rendered by encode, which turns the retry_after metadata into
// a Retry-After header.
func RateLimit(limiter Limiter, encode khttp.EncodeErrorFunc, logger *pkglog.LogHelper) khttp.FilterFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			client := ClientIP(req)
			if err := limiter.Check(req.Context(), client); err != nil {
				logger.RateLimit("Rate limit exceeded", "client", client, "path", req.URL.Path)
				encode(w, req, err)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
