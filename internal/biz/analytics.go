package biz

import (
	"context"
	"time"

	"ServiceDesk/internal/conf"
	"ServiceDesk/internal/data"

	"github.com/go-kratos/kratos/v2/log"
)

// Cached report names, stored under analytics:{name}.
const (
	ReportAverageDuration  = "average-duration"
	ReportOrderFrequency   = "order-frequency"
	ReportCustomerActivity = "customer-activity"
)

const defaultReportTTL = 10 * time.Minute

// AverageDuration is the mean planned duration of completed work orders.
type AverageDuration struct {
	Seconds *float64 `json:"average_duration_seconds"`
	Human   string   `json:"average_duration"`
}

// ActiveCustomers is the number of active customers that started in a range.
type ActiveCustomers struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Count int64  `json:"active_customers"`
}

// AnalyticsUsecase serves the reporting endpoints. The parameterless reports
// are read through the cache and recomputed by Refresh.
type AnalyticsUsecase struct {
	repo   AnalyticsRepo
	cache  data.CacheClient
	ttl    time.Duration
	logger *log.Helper
}

// NewAnalyticsUsecase creates a new analytics usecase.
func NewAnalyticsUsecase(c *conf.Analytics, repo AnalyticsRepo, cache data.CacheClient, logger log.Logger) *AnalyticsUsecase {
	ttl := defaultReportTTL
	if c != nil && c.CacheTTL > 0 {
		ttl = c.CacheTTL
	}
	return &AnalyticsUsecase{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: log.NewHelper(log.With(logger, "module", "biz/analytics")),
	}
}

// AverageDuration returns the average planned duration of done work orders.
func (uc *AnalyticsUsecase) AverageDuration(ctx context.Context) (*AverageDuration, error) {
	var report AverageDuration
	if uc.cached(ctx, ReportAverageDuration, &report) {
		return &report, nil
	}
	computed, err := uc.computeAverageDuration(ctx)
	if err != nil {
		return nil, err
	}
	uc.store(ctx, ReportAverageDuration, computed)
	return computed, nil
}

// OrderFrequency returns work order counts per customer, busiest first.
func (uc *AnalyticsUsecase) OrderFrequency(ctx context.Context) ([]data.OrderFrequencyRow, error) {
	var report []data.OrderFrequencyRow
	if uc.cached(ctx, ReportOrderFrequency, &report) {
		return report, nil
	}
	computed, err := uc.computeOrderFrequency(ctx)
	if err != nil {
		return nil, err
	}
	uc.store(ctx, ReportOrderFrequency, computed)
	return computed, nil
}

// CustomerActivity returns work order counts per calendar month.
func (uc *AnalyticsUsecase) CustomerActivity(ctx context.Context) ([]data.ActivityRow, error) {
	var report []data.ActivityRow
	if uc.cached(ctx, ReportCustomerActivity, &report) {
		return report, nil
	}
	computed, err := uc.computeCustomerActivity(ctx)
	if err != nil {
		return nil, err
	}
	uc.store(ctx, ReportCustomerActivity, computed)
	return computed, nil
}

// ActiveCustomers counts active customers whose start date lies in [start, end].
func (uc *AnalyticsUsecase) ActiveCustomers(ctx context.Context, start, end time.Time) (*ActiveCustomers, error) {
	if end.Before(start) {
		return nil, ValidationError(map[string]string{"end": "must not be before start"})
	}
	n, err := uc.repo.CountActiveCustomers(ctx, start.UTC(), end.UTC())
	if err != nil {
		return nil, mapRepoError(err, ReasonInternal, "report not found")
	}
	return &ActiveCustomers{
		Start: start.UTC().Format(time.RFC3339),
		End:   end.UTC().Format(time.RFC3339),
		Count: n,
	}, nil
}

// Refresh recomputes and caches every parameterless report. It stops at the
// first failing report.
func (uc *AnalyticsUsecase) Refresh(ctx context.Context) error {
	avg, err := uc.computeAverageDuration(ctx)
	if err != nil {
		return err
	}
	uc.store(ctx, ReportAverageDuration, avg)

	freq, err := uc.computeOrderFrequency(ctx)
	if err != nil {
		return err
	}
	uc.store(ctx, ReportOrderFrequency, freq)

	activity, err := uc.computeCustomerActivity(ctx)
	if err != nil {
		return err
	}
	uc.store(ctx, ReportCustomerActivity, activity)
	return nil
}

func (uc *AnalyticsUsecase) computeAverageDuration(ctx context.Context) (*AverageDuration, error) {
	seconds, ok, err := uc.repo.AverageDurationSeconds(ctx)
	if err != nil {
		return nil, mapRepoError(err, ReasonInternal, "report not found")
	}
	if !ok {
		return &AverageDuration{Human: "no completed work orders"}, nil
	}
	return &AverageDuration{
		Seconds: &seconds,
		Human:   (time.Duration(seconds) * time.Second).String(),
	}, nil
}

func (uc *AnalyticsUsecase) computeOrderFrequency(ctx context.Context) ([]data.OrderFrequencyRow, error) {
	rows, err := uc.repo.OrderFrequency(ctx)
	if err != nil {
		return nil, mapRepoError(err, ReasonInternal, "report not found")
	}
	if rows == nil {
		rows = []data.OrderFrequencyRow{}
	}
	return rows, nil
}

func (uc *AnalyticsUsecase) computeCustomerActivity(ctx context.Context) ([]data.ActivityRow, error) {
	rows, err := uc.repo.CustomerActivity(ctx)
	if err != nil {
		return nil, mapRepoError(err, ReasonInternal, "report not found")
	}
	if rows == nil {
		rows = []data.ActivityRow{}
	}
	return rows, nil
}

func (uc *AnalyticsUsecase) cached(ctx context.Context, report string, dest interface{}) bool {
	return uc.cache.Get(ctx, data.BuildCacheKey(data.CacheKeyAnalytics, report), dest) == nil
}

func (uc *AnalyticsUsecase) store(ctx context.Context, report string, value interface{}) {
	key := data.BuildCacheKey(data.CacheKeyAnalytics, report)
	if err := uc.cache.Set(ctx, key, value, uc.ttl); err != nil {
		uc.logger.Debugw("msg", "failed to cache report", "report", report, "error", err)
	}
}
