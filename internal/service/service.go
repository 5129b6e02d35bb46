// Package service exposes the business usecases over HTTP.
package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ServiceDesk/internal/biz"
	"ServiceDesk/internal/data"

	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/wire"
)

// ProviderSet is service providers.
var ProviderSet = wire.NewSet(
	NewCustomerService,
	NewWorkOrderService,
	NewAnalyticsService,
	NewHealthService,
	wire.Bind(new(DependencyChecker), new(*data.Data)),
)

// MessageReply is returned by writes that answer 202 Accepted.
type MessageReply struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// route adapts one service call to a kratos route handler. decode fills the
// request from path, query and body. A nil reply is answered with the bare
// status code.
func route[Req any](operation string, status int, decode func(http.Context, *Req) error, call func(context.Context, *Req) (interface{}, error)) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in Req
		if decode != nil {
			if err := decode(ctx, &in); err != nil {
				return err
			}
		}
		http.SetOperation(ctx, operation)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(ctx, req.(*Req))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		if out == nil {
			ctx.Response().WriteHeader(status)
			return nil
		}
		return ctx.Result(status, out)
	}
}

// IDRequest addresses a single resource by its path id.
type IDRequest struct {
	ID string
}

func decodeID(ctx http.Context, in *IDRequest) error {
	in.ID = ctx.Vars().Get("id")
	return nil
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parseTimeParam reads an optional ISO-8601 query parameter. A date without
// a zone is taken as UTC.
func parseTimeParam(q url.Values, name string) (*time.Time, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, biz.ValidationError(map[string]string{name: "must be an ISO-8601 date or timestamp"})
}

// parseBoolParam reads a required boolean query parameter.
func parseBoolParam(q url.Values, name string) (bool, error) {
	raw := q.Get(name)
	if raw == "" {
		return false, biz.ValidationError(map[string]string{name: "is required"})
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, biz.ValidationError(map[string]string{name: "must be true or false"})
	}
	return v, nil
}
