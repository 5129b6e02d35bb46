package errors

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestClassifyDBError_Nil(t *testing.T) {
	assert.Nil(t, ClassifyDBError(nil))
	assert.False(t, IsNotFoundError(nil))
	assert.False(t, IsConnectionError(nil))
}

func TestClassifyDBError_GORMRecordNotFound(t *testing.T) {
	dbErr := ClassifyDBError(fmt.Errorf("find customer: %w", gorm.ErrRecordNotFound))

	require.NotNil(t, dbErr)
	assert.Equal(t, ErrorTypeNotFound, dbErr.Type)
	assert.Equal(t, "record not found", dbErr.Message)
	assert.True(t, errors.Is(dbErr, gorm.ErrRecordNotFound))
	assert.True(t, IsNotFoundError(gorm.ErrRecordNotFound))
}

func TestClassifyDBError_MySQLCodes(t *testing.T) {
	tests := []struct {
		code     uint16
		expected DatabaseErrorType
	}{
		{1062, ErrorTypeDuplicateKey},
		{1406, ErrorTypeDataTooLong},
		{1451, ErrorTypeConstraintViolation},
		{1452, ErrorTypeConstraintViolation},
		{1213, ErrorTypeDeadlock},
		{1205, ErrorTypeDeadlock},
		{1048, ErrorTypeInvalidValue},
		{1366, ErrorTypeInvalidValue},
		{1040, ErrorTypeConnectionError},
		{2006, ErrorTypeConnectionError},
		{2013, ErrorTypeConnectionError},
		{1146, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("mysql_%d", tt.code), func(t *testing.T) {
			mysqlErr := &mysql.MySQLError{Number: tt.code, Message: "boom"}
			dbErr := ClassifyDBError(fmt.Errorf("wrapped: %w", mysqlErr))

			require.NotNil(t, dbErr)
			assert.Equal(t, tt.expected, dbErr.Type)
			assert.Equal(t, tt.code, dbErr.MySQLErrCode)
			assert.Contains(t, dbErr.Error(), fmt.Sprintf("MySQL error %d", tt.code))
		})
	}
}

func TestClassifyDBError_ConnectionErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"bad conn", driver.ErrBadConn},
		{"invalid conn", mysql.ErrInvalidConn},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded)},
		{"net op error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}},
		{"message refused", errors.New("dial tcp 127.0.0.1:3306: connect: connection refused")},
		{"closed pool", errors.New("sql: database is closed")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, IsConnectionError(tt.err))
			assert.Equal(t, "connection", ClassifyDBError(tt.err).Type.String())
		})
	}
}

func TestClassifyDBError_Unknown(t *testing.T) {
	dbErr := ClassifyDBError(errors.New("syntax error near SELECT"))

	require.NotNil(t, dbErr)
	assert.Equal(t, ErrorTypeUnknown, dbErr.Type)
	assert.Equal(t, "unknown", dbErr.Type.String())
	assert.Equal(t, "unknown database error: syntax error near SELECT", dbErr.Error())
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsDuplicateKeyError(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsDuplicateKeyError(&mysql.MySQLError{Number: 1452}))
	assert.True(t, IsConstraintViolationError(&mysql.MySQLError{Number: 1452}))
	assert.False(t, IsConnectionError(gorm.ErrRecordNotFound))
}
