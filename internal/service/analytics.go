package service

import (
	"context"
	"time"

	"ServiceDesk/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
)

// Operation names reported to middleware.
const (
	OperationAnalyticsAverageDuration  = "/servicedesk.v1.Analytics/AverageDuration"
	OperationAnalyticsOrderFrequency   = "/servicedesk.v1.Analytics/OrderFrequency"
	OperationAnalyticsCustomerActivity = "/servicedesk.v1.Analytics/CustomerActivity"
	OperationAnalyticsActiveCustomers  = "/servicedesk.v1.Analytics/ActiveCustomers"
)

// AnalyticsService serves /v1/analytics.
type AnalyticsService struct {
	uc     *biz.AnalyticsUsecase
	logger *log.Helper
}

// NewAnalyticsService creates a new AnalyticsService instance.
func NewAnalyticsService(uc *biz.AnalyticsUsecase, logger log.Logger) *AnalyticsService {
	return &AnalyticsService{
		uc:     uc,
		logger: log.NewHelper(log.With(logger, "module", "service/analytics")),
	}
}

// ActiveCustomersRequest bounds the start_date range.
type ActiveCustomersRequest struct {
	Start time.Time
	End   time.Time
}

// ActiveCustomers counts active customers that started within the range.
func (s *AnalyticsService) ActiveCustomers(ctx context.Context, req *ActiveCustomersRequest) (*biz.ActiveCustomers, error) {
	return s.uc.ActiveCustomers(ctx, req.Start, req.End)
}

func decodeActiveCustomers(ctx http.Context, in *ActiveCustomersRequest) error {
	q := ctx.Query()
	start, err := parseTimeParam(q, "start")
	if err != nil {
		return err
	}
	end, err := parseTimeParam(q, "end")
	if err != nil {
		return err
	}
	missing := map[string]string{}
	if start == nil {
		missing["start"] = "is required"
	}
	if end == nil {
		missing["end"] = "is required"
	}
	if len(missing) > 0 {
		return biz.ValidationError(missing)
	}
	in.Start, in.End = *start, *end
	return nil
}

// RegisterAnalyticsHTTPServer registers the report routes on s.
func RegisterAnalyticsHTTPServer(s *http.Server, srv *AnalyticsService) {
	r := s.Route("/v1/analytics")
	r.GET("/average-duration", route(OperationAnalyticsAverageDuration, 200, nil,
		func(ctx context.Context, _ *struct{}) (interface{}, error) { return srv.uc.AverageDuration(ctx) },
	))
	r.GET("/order-frequency", route(OperationAnalyticsOrderFrequency, 200, nil,
		func(ctx context.Context, _ *struct{}) (interface{}, error) { return srv.uc.OrderFrequency(ctx) },
	))
	r.GET("/customer-activity", route(OperationAnalyticsCustomerActivity, 200, nil,
		func(ctx context.Context, _ *struct{}) (interface{}, error) { return srv.uc.CustomerActivity(ctx) },
	))
	r.GET("/active-customers", route(OperationAnalyticsActiveCustomers, 200, decodeActiveCustomers,
		func(ctx context.Context, in *ActiveCustomersRequest) (interface{}, error) { return srv.ActiveCustomers(ctx, in) },
	))
}
