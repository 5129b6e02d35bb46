package biz

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"ServiceDesk/internal/conf"
	"ServiceDesk/internal/data"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// RateLimiterUseCase enforces the per-client request budget using a fixed
// one-minute window counted by RateLimitRepo.
type RateLimiterUseCase struct {
	repo   RateLimitRepo
	limit  int64
	now    func() time.Time
	logger *log.Helper
}

// NewRateLimiterUseCase creates a new rate limiter use case. A limit of zero
// disables limiting.
func NewRateLimiterUseCase(c *conf.Server, repo RateLimitRepo, logger log.Logger) *RateLimiterUseCase {
	var limit int64
	if c != nil {
		limit = int64(c.RateLimitPerMinute)
	}
	return &RateLimiterUseCase{
		repo:   repo,
		limit:  limit,
		now:    time.Now,
		logger: log.NewHelper(log.With(logger, "module", "biz/rate_limiter")),
	}
}

// newRateLimitExceededError creates a 429 error carrying the seconds until
// the current window closes.
func newRateLimitExceededError(current, limit, retryAfter int64) error {
	return errors.New(
		429,
		ReasonRateLimitExceeded,
		fmt.Sprintf("rate limit exceeded: current=%d limit=%d retry_after=%ds", current, limit, retryAfter),
	).WithMetadata(map[string]string{MetadataRetryAfter: strconv.FormatInt(retryAfter, 10)})
}

// Check counts one request from client and returns a 429 error once the
// client exceeds the limit in the current window.
func (uc *RateLimiterUseCase) Check(ctx context.Context, client string) error {
	if uc.limit <= 0 {
		return nil
	}

	count := uc.repo.Increment(ctx, client)
	if count <= uc.limit {
		return nil
	}

	window := int64(data.RateLimitWindow / time.Second)
	retryAfter := window - uc.now().Unix()%window
	uc.logger.Debugw("msg", "rate limit exceeded", "client", client, "current", count, "limit", uc.limit)
	return newRateLimitExceededError(count, uc.limit, retryAfter)
}
