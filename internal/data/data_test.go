package data

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockData builds a Data backed by go-sqlmock and, when withRedis is
// set, a miniredis instance.
func newMockData(t *testing.T, withRedis bool) (*Data, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	var (
		mr  *miniredis.Miniredis
		rdb *redis.Client
	)
	if withRedis {
		mr = miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
	}

	d, cleanup, err := NewData(db, rdb, NewCacheClient(rdb), log.DefaultLogger)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	return d, mock, mr
}

func TestNewData_WithRedis(t *testing.T) {
	d, _, _ := newMockData(t, true)

	assert.NotNil(t, d.GetRedisClient())
	assert.NotNil(t, d.GetCache())
	assert.NoError(t, d.PingRedis(context.Background()))
}

func TestNewData_WithoutRedis(t *testing.T) {
	d, _, _ := newMockData(t, false)

	assert.Nil(t, d.GetRedisClient())
	assert.Error(t, d.PingRedis(context.Background()))
}

func TestData_PingRedis_ServerDown(t *testing.T) {
	d, _, mr := newMockData(t, true)
	mr.Close()

	assert.Error(t, d.PingRedis(context.Background()))
}

func TestData_ExecTx_Commit(t *testing.T) {
	d, mock, _ := newMockData(t, false)
	repo := NewWorkOrderRepo(d, log.DefaultLogger)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `work_orders` SET `status`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := d.ExecTx(context.Background(), func(ctx context.Context) error {
		return repo.UpdateStatus(ctx, "wo-1", WorkOrderDone)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestData_ExecTx_Rollback(t *testing.T) {
	d, mock, _ := newMockData(t, false)
	repo := NewWorkOrderRepo(d, log.DefaultLogger)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `work_orders` SET `status`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := d.ExecTx(context.Background(), func(ctx context.Context) error {
		if err := repo.UpdateStatus(ctx, "wo-1", WorkOrderDone); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestData_PingDatabase(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	d, _, err := NewData(db, nil, NewCacheClient(nil), log.DefaultLogger)
	require.NoError(t, err)

	mock.ExpectPing()
	assert.NoError(t, d.PingDatabase(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.Error(t, d.PingDatabase(context.Background()))
}
