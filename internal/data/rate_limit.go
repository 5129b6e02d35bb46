package data

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimitWindow is the length of one fixed counting window.
const RateLimitWindow = time.Minute

// localCounterSize bounds how many client windows are tracked in process
// while Redis is unreachable.
const localCounterSize = 10000

// RateLimitRepo counts requests per client in fixed one-minute windows.
// Counters live in Redis (rate:{client}:{window}); when Redis is missing or
// failing, an in-process LRU keeps counting so limiting still applies per instance.
type RateLimitRepo struct {
	rdb    *redis.Client
	local  *lru.Cache[string, int64]
	mu     sync.Mutex
	now    func() time.Time
	logger *log.Helper
}

// NewRateLimitRepo creates a new rate limit repository.
func NewRateLimitRepo(rdb *redis.Client, logger log.Logger) (*RateLimitRepo, error) {
	local, err := lru.New[string, int64](localCounterSize)
	if err != nil {
		return nil, err
	}
	return &RateLimitRepo{
		rdb:    rdb,
		local:  local,
		now:    time.Now,
		logger: log.NewHelper(log.With(logger, "module", "data/rate_limit")),
	}, nil
}

// Increment records one request from client and returns the number of
// requests seen in the current window, including this one.
func (r *RateLimitRepo) Increment(ctx context.Context, client string) int64 {
	window := r.now().Unix() / int64(RateLimitWindow/time.Second)
	key := BuildCacheKey(CacheKeyRate, client, strconv.FormatInt(window, 10))

	if r.rdb != nil {
		count, err := r.incrementRedis(ctx, key)
		if err == nil {
			return count
		}
		r.logger.Warnw("msg", "rate limit counter unavailable, counting locally", "error", err)
	}
	return r.incrementLocal(key)
}

func (r *RateLimitRepo) incrementRedis(ctx context.Context, key string) (int64, error) {
	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, RateLimitWindow+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (r *RateLimitRepo) incrementLocal(key string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	count, _ := r.local.Get(key)
	count++
	r.local.Add(key, count)
	return count
}
