package log

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const requestContextKey contextKey = "servicedesk_request_context"

// CorrelationHeader carries the correlation id in and out of HTTP requests.
const CorrelationHeader = "X-Correlation-ID"

// RequestContext holds per-request tracing information.
type RequestContext struct {
	CorrelationID string
	ClientIP      string
	StartTime     time.Time
}

// NewCorrelationID returns a fresh random correlation id.
func NewCorrelationID() string {
	return uuid.NewString()
}

// WithRequestContext attaches the correlation id and client address to ctx.
func WithRequestContext(ctx context.Context, correlationID, clientIP string) context.Context {
	return context.WithValue(ctx, requestContextKey, &RequestContext{
		CorrelationID: correlationID,
		ClientIP:      clientIP,
		StartTime:     time.Now(),
	})
}

// GetRequestContext extracts the RequestContext from ctx, or an empty one
// with correlation id "unknown".
func GetRequestContext(ctx context.Context) *RequestContext {
	if ctx != nil {
		if reqCtx, ok := ctx.Value(requestContextKey).(*RequestContext); ok {
			return reqCtx
		}
	}
	return &RequestContext{CorrelationID: "unknown"}
}

// GetCorrelationID extracts the correlation id from ctx.
func GetCorrelationID(ctx context.Context) string {
	return GetRequestContext(ctx).CorrelationID
}

// GetElapsedTime returns the milliseconds since the request started.
func GetElapsedTime(ctx context.Context) int64 {
	reqCtx := GetRequestContext(ctx)
	if reqCtx.StartTime.IsZero() {
		return 0
	}
	return time.Since(reqCtx.StartTime).Milliseconds()
}
