package log

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
)

// SlowRequestThresholdMs is the request duration above which a slow-request warning is logged.
const SlowRequestThresholdMs = 1000

// LogHelper extends the Kratos log.Helper with typed convenience methods.
// Each method tags its line with a "type" field picked up by the console encoder.
type LogHelper struct {
	*log.Helper
	logger log.Logger
}

// NewLogHelper creates a LogHelper around logger.
func NewLogHelper(logger log.Logger) *LogHelper {
	return &LogHelper{
		Helper: log.NewHelper(logger),
		logger: logger,
	}
}

func withType(msg, logType string, kvs []interface{}) []interface{} {
	allKvs := append([]interface{}{"msg", msg}, kvs...)
	return append(allKvs, "type", logType)
}

// Startup logs service startup progress.
func (h *LogHelper) Startup(msg string, kvs ...interface{}) {
	h.Infow(withType(msg, "startup", kvs)...)
}

// Database logs database activity at debug level.
func (h *LogHelper) Database(msg string, kvs ...interface{}) {
	h.Debugw(withType(msg, "database", kvs)...)
}

// Redis logs cache activity at debug level.
func (h *LogHelper) Redis(msg string, kvs ...interface{}) {
	h.Debugw(withType(msg, "redis", kvs)...)
}

// RateLimit logs a rejected request.
func (h *LogHelper) RateLimit(msg string, kvs ...interface{}) {
	h.Warnw(withType(msg, "rate_limit", kvs)...)
}

// Cron logs scheduled job activity.
func (h *LogHelper) Cron(msg string, kvs ...interface{}) {
	h.Infow(withType(msg, "cron", kvs)...)
}

// Breaker logs circuit breaker state changes.
func (h *LogHelper) Breaker(from, to string, kvs ...interface{}) {
	msg := fmt.Sprintf("Event circuit %s -> %s", from, to)
	allKvs := append([]interface{}{"from", from, "to", to}, kvs...)
	h.Warnw(withType(msg, "breaker", allKvs)...)
}

// Event logs one publish attempt. The payload is redacted before it reaches the logger.
func (h *LogHelper) Event(level log.Level, eventType, entityID, outcome string, payload map[string]any, kvs ...interface{}) {
	msg := fmt.Sprintf("Event %s for %s: %s", eventType, entityID, outcome)
	allKvs := append([]interface{}{
		"event_type", eventType,
		"entity_id", entityID,
		"outcome", outcome,
		"payload", RedactPayload(payload),
	}, kvs...)
	_ = h.logger.Log(level, withType(msg, "event", allKvs)...)
}

// RequestWithContext logs a completed HTTP request and warns when it was slow.
func (h *LogHelper) RequestWithContext(ctx context.Context, method, url string, status int, durationMs int64, kvs ...interface{}) {
	correlationID := GetCorrelationID(ctx)

	msg := fmt.Sprintf("%s %s - %d (%dms)", method, url, status, durationMs)
	allKvs := append([]interface{}{
		"correlation_id", correlationID,
		"method", method,
		"url", url,
		"status", status,
		"duration_ms", durationMs,
	}, kvs...)

	switch {
	case status >= 500:
		h.Errorw(withType(msg, "request", allKvs)...)
	case status >= 400:
		h.Warnw(withType(msg, "request", allKvs)...)
	default:
		h.Infow(withType(msg, "request", allKvs)...)
	}

	if durationMs > SlowRequestThresholdMs {
		h.SlowRequest(ctx, method, url, durationMs, SlowRequestThresholdMs)
	}
}

// SlowRequest logs a request that exceeded threshold milliseconds.
func (h *LogHelper) SlowRequest(ctx context.Context, method, url string, duration, threshold int64) {
	msg := fmt.Sprintf("Slow request detected | %s %s | %dms (threshold: %dms)", method, url, duration, threshold)
	h.Warnw(withType(msg, "slow_request", []interface{}{
		"correlation_id", GetCorrelationID(ctx),
		"method", method,
		"url", url,
		"duration_ms", duration,
		"threshold_ms", threshold,
	})...)
}
