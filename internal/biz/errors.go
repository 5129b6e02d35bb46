package biz

import (
	"fmt"
	"sort"
	"strings"

	pkgerrors "ServiceDesk/pkg/errors"

	"github.com/go-kratos/kratos/v2/errors"
)

// Error reasons returned to clients.
const (
	ReasonValidation          = "VALIDATION_ERROR"
	ReasonCustomerNotFound    = "CUSTOMER_NOT_FOUND"
	ReasonWorkOrderNotFound   = "WORK_ORDER_NOT_FOUND"
	ReasonDatabaseUnavailable = "DATABASE_UNAVAILABLE"
	ReasonDatabaseError       = "DATABASE_ERROR"
	ReasonRateLimitExceeded   = "RATE_LIMIT_EXCEEDED"
	ReasonInternal            = "INTERNAL_ERROR"
)

// MetadataRetryAfter carries the Retry-After seconds on unavailable and
// rate limited errors. The HTTP error encoder turns it into a header.
const MetadataRetryAfter = "retry_after"

// Retry-After hints for database failures, in seconds.
const (
	retryAfterConnection = "30"
	retryAfterDatabase   = "60"
)

// fieldErrors collects validation problems keyed by field name.
type fieldErrors map[string]string

func (f fieldErrors) add(field, problem string) {
	if _, ok := f[field]; !ok {
		f[field] = problem
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return ValidationError(f)
}

// ValidationError builds a 400 error listing every invalid field in its metadata.
func ValidationError(fields map[string]string) *errors.Error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msg := fmt.Sprintf("invalid request: %s", strings.Join(names, ", "))
	return errors.BadRequest(ReasonValidation, msg).WithMetadata(fields)
}

// mapRepoError converts a repository error into a transport-facing error.
func mapRepoError(err error, notFoundReason, notFoundMsg string) error {
	if err == nil {
		return nil
	}

	var kerr *errors.Error
	if errors.As(err, &kerr) {
		return kerr
	}

	dbErr := pkgerrors.ClassifyDBError(err)
	switch dbErr.Type {
	case pkgerrors.ErrorTypeNotFound:
		return errors.NotFound(notFoundReason, notFoundMsg)
	case pkgerrors.ErrorTypeConnectionError:
		return errors.ServiceUnavailable(ReasonDatabaseUnavailable, "database is temporarily unavailable").
			WithMetadata(map[string]string{MetadataRetryAfter: retryAfterConnection}).
			WithCause(err)
	case pkgerrors.ErrorTypeDataTooLong, pkgerrors.ErrorTypeInvalidValue:
		return errors.BadRequest(ReasonValidation, dbErr.Message).WithCause(err)
	default:
		return errors.ServiceUnavailable(ReasonDatabaseError, "database error, please retry later").
			WithMetadata(map[string]string{MetadataRetryAfter: retryAfterDatabase}).
			WithCause(err)
	}
}

func customerNotFound(id string) error {
	return errors.NotFound(ReasonCustomerNotFound, fmt.Sprintf("customer with id %s not found", id))
}

func workOrderNotFound(id string) error {
	return errors.NotFound(ReasonWorkOrderNotFound, fmt.Sprintf("work order with id %s not found", id))
}
