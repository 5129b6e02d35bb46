// Package data provides data access layer implementations.
// It handles database connections and data persistence.
package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewRedisClient,
	NewCacheClient,
	NewMySQLClient,
	NewCustomerRepo,
	NewWorkOrderRepo,
	NewAnalyticsRepo,
	NewRateLimitRepo,
	NewEventSender,
)

// Data contains all data layer dependencies.
type Data struct {
	db          *gorm.DB
	redisClient *redis.Client
	cache       CacheClient
}

type txKey struct{}

// NewData creates a new Data instance with all data layer dependencies.
// Redis connection failure does not prevent application startup (graceful degradation).
func NewData(db *gorm.DB, rdb *redis.Client, cache CacheClient, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)

	if rdb == nil {
		helper.Warn("Redis client is nil, caching will be unavailable")
	}

	d := &Data{
		db:          db,
		redisClient: rdb,
		cache:       cache,
	}

	cleanup := func() {
		helper.Info("closing the data resources")
	}

	return d, cleanup, nil
}

// DB returns the transaction bound to ctx by ExecTx, or the root handle.
func (d *Data) DB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return d.db.WithContext(ctx)
}

// ExecTx runs fn in a single database transaction. Repositories called with
// the ctx passed to fn take part in the transaction.
func (d *Data) ExecTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// GetCache returns the cache client for repository use.
func (d *Data) GetCache() CacheClient {
	return d.cache
}

// GetRedisClient returns the Redis client for advanced operations.
func (d *Data) GetRedisClient() *redis.Client {
	return d.redisClient
}

// PingDatabase checks that the database answers.
func (d *Data) PingDatabase(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// PingRedis checks that Redis answers.
func (d *Data) PingRedis(ctx context.Context) error {
	if d.redisClient == nil {
		return errors.New("redis client is not configured")
	}
	return d.redisClient.Ping(ctx).Err()
}
