package server

import (
	"net/http"

	"ServiceDesk/internal/biz"
	pkglog "ServiceDesk/pkg/log"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// NewErrorEncoder renders errors as kratos error bodies. Errors that are not
// kratos errors become a generic 500 and are only logged. A retry_after
// metadata entry is copied to the Retry-After header.
func NewErrorEncoder(logger log.Logger) khttp.EncodeErrorFunc {
	helper := log.NewHelper(log.With(logger, "module", "server/errors"))

	return func(w http.ResponseWriter, r *http.Request, err error) {
		correlationID := pkglog.GetCorrelationID(r.Context())

		var kerr *errors.Error
		if !errors.As(err, &kerr) {
			helper.Errorw("msg", "unhandled error", "correlation_id", correlationID, "path", r.URL.Path, "error", err)
			kerr = errors.InternalServer(biz.ReasonInternal, "internal server error")
		} else if kerr.Code >= http.StatusInternalServerError && kerr.Unwrap() != nil {
			helper.Errorw("msg", "request failed", "correlation_id", correlationID, "reason", kerr.Reason, "error", kerr.Unwrap())
		}

		if retryAfter, ok := kerr.Metadata[biz.MetadataRetryAfter]; ok {
			w.Header().Set("Retry-After", retryAfter)
		}
		khttp.DefaultErrorEncoder(w, r, kerr)
	}
}
