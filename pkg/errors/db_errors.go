// Package errors provides database error classification and handling utilities.
package errors

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// DatabaseErrorType represents the type of database error.
type DatabaseErrorType int

const (
	// ErrorTypeUnknown represents an unknown database error.
	ErrorTypeUnknown DatabaseErrorType = iota
	// ErrorTypeDuplicateKey represents a duplicate key constraint violation (MySQL 1062).
	ErrorTypeDuplicateKey
	// ErrorTypeConstraintViolation represents a foreign key violation (MySQL 1451, 1452).
	ErrorTypeConstraintViolation
	// ErrorTypeDataTooLong represents a data too long error (MySQL 1406).
	ErrorTypeDataTooLong
	// ErrorTypeNotFound represents a record not found error.
	ErrorTypeNotFound
	// ErrorTypeDeadlock represents a deadlock or lock wait timeout (MySQL 1213, 1205).
	ErrorTypeDeadlock
	// ErrorTypeConnectionError means the database could not be reached.
	ErrorTypeConnectionError
	// ErrorTypeInvalidValue represents an invalid value error.
	ErrorTypeInvalidValue
)

func (t DatabaseErrorType) String() string {
	switch t {
	case ErrorTypeDuplicateKey:
		return "duplicate_key"
	case ErrorTypeConstraintViolation:
		return "constraint_violation"
	case ErrorTypeDataTooLong:
		return "data_too_long"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeDeadlock:
		return "deadlock"
	case ErrorTypeConnectionError:
		return "connection"
	case ErrorTypeInvalidValue:
		return "invalid_value"
	default:
		return "unknown"
	}
}

// DatabaseError wraps a database error with classification information.
type DatabaseError struct {
	Type         DatabaseErrorType
	OriginalErr  error
	MySQLErrCode uint16
	Message      string
}

// Error implements the error interface.
func (e *DatabaseError) Error() string {
	if e.MySQLErrCode > 0 {
		return fmt.Sprintf("%s (MySQL error %d): %v", e.Message, e.MySQLErrCode, e.OriginalErr)
	}
	return fmt.Sprintf("%s: %v", e.Message, e.OriginalErr)
}

// Unwrap returns the underlying error for errors.Is and errors.As compatibility.
func (e *DatabaseError) Unwrap() error {
	return e.OriginalErr
}

type mysqlClass struct {
	typ     DatabaseErrorType
	message string
}

var mysqlClasses = map[uint16]mysqlClass{
	1062: {ErrorTypeDuplicateKey, "duplicate key constraint violation"},
	1406: {ErrorTypeDataTooLong, "data too long for column"},
	1451: {ErrorTypeConstraintViolation, "cannot delete/update record due to foreign key constraint"},
	1452: {ErrorTypeConstraintViolation, "foreign key constraint violation"},
	1213: {ErrorTypeDeadlock, "deadlock detected"},
	1205: {ErrorTypeDeadlock, "lock wait timeout exceeded"},
	1048: {ErrorTypeInvalidValue, "column cannot be null"},
	1265: {ErrorTypeInvalidValue, "invalid or truncated value"},
	1366: {ErrorTypeInvalidValue, "invalid or truncated value"},
	1040: {ErrorTypeConnectionError, "too many connections"},
	1045: {ErrorTypeConnectionError, "access denied"},
	1049: {ErrorTypeConnectionError, "unknown database"},
	2002: {ErrorTypeConnectionError, "database connection error"},
	2003: {ErrorTypeConnectionError, "database connection error"},
	2006: {ErrorTypeConnectionError, "server has gone away"},
	2013: {ErrorTypeConnectionError, "lost connection during query"},
}

// ClassifyDBError classifies a database error into a specific error type.
//
// It handles GORM errors, MySQL server error codes and transport failures:
//   - ErrRecordNotFound → ErrorTypeNotFound
//   - MySQL 1062 → ErrorTypeDuplicateKey
//   - MySQL 1451/1452 → ErrorTypeConstraintViolation
//   - MySQL 1213/1205 → ErrorTypeDeadlock
//   - driver.ErrBadConn, mysql.ErrInvalidConn, net errors → ErrorTypeConnectionError
//
// Example:
//
//	if err := repo.Save(ctx, order); err != nil {
//	    if errors.ClassifyDBError(err).Type == errors.ErrorTypeConnectionError {
//	        return kerrors.ServiceUnavailable("DATABASE_UNAVAILABLE", "database unavailable")
//	    }
//	}
func ClassifyDBError(err error) *DatabaseError {
	if err == nil {
		return nil
	}

	var classified *DatabaseError
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &DatabaseError{
			Type:        ErrorTypeNotFound,
			OriginalErr: err,
			Message:     "record not found",
		}
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		class, ok := mysqlClasses[mysqlErr.Number]
		if !ok {
			class = mysqlClass{ErrorTypeUnknown, "MySQL error"}
		}
		return &DatabaseError{
			Type:         class.typ,
			OriginalErr:  err,
			MySQLErrCode: mysqlErr.Number,
			Message:      class.message,
		}
	}

	if isConnectionError(err) {
		return &DatabaseError{
			Type:        ErrorTypeConnectionError,
			OriginalErr: err,
			Message:     "database connection error",
		}
	}

	return &DatabaseError{
		Type:        ErrorTypeUnknown,
		OriginalErr: err,
		Message:     "unknown database error",
	}
}

var connectionKeywords = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"i/o timeout",
	"connection lost",
	"can't connect",
	"dial tcp",
	"sql: database is closed",
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	for _, keyword := range connectionKeywords {
		if strings.Contains(errMsg, keyword) {
			return true
		}
	}
	return false
}

// IsDuplicateKeyError checks if the error is a duplicate key constraint violation.
func IsDuplicateKeyError(err error) bool {
	dbErr := ClassifyDBError(err)
	return dbErr != nil && dbErr.Type == ErrorTypeDuplicateKey
}

// IsNotFoundError checks if the error is a record not found error.
func IsNotFoundError(err error) bool {
	dbErr := ClassifyDBError(err)
	return dbErr != nil && dbErr.Type == ErrorTypeNotFound
}

// IsConstraintViolationError checks if the error is a constraint violation.
func IsConstraintViolationError(err error) bool {
	dbErr := ClassifyDBError(err)
	return dbErr != nil && dbErr.Type == ErrorTypeConstraintViolation
}

// IsConnectionError checks if the database could not be reached.
func IsConnectionError(err error) bool {
	dbErr := ClassifyDBError(err)
	return dbErr != nil && dbErr.Type == ErrorTypeConnectionError
}
