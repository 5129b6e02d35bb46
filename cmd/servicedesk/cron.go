package main

import (
	"context"
	"fmt"
	"time"

	"ServiceDesk/internal/biz"
	"ServiceDesk/internal/conf"
	"ServiceDesk/internal/event"
	pkglog "ServiceDesk/pkg/log"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport"
	"github.com/robfig/cron/v3"
)

const (
	defaultRefreshInterval = 5 * time.Minute
	refreshTimeout         = 2 * time.Minute
	breakerReportSchedule  = "@every 1m"
)

type reportRefresher interface {
	Refresh(ctx context.Context) error
}

type breakerSnapshotter interface {
	Snapshot() event.Snapshot
}

// newCron registers the scheduled jobs:
//   - analytics refresh every analytics.refresh_interval
//   - event circuit report every minute while the circuit is not closed
func newCron(c *conf.Analytics, analytics *biz.AnalyticsUsecase, breaker *event.Breaker, logger log.Logger) (*cron.Cron, error) {
	helper := pkglog.NewLogHelper(log.With(logger, "module", "cron"))

	interval := defaultRefreshInterval
	if c != nil && c.RefreshInterval > 0 {
		interval = c.RefreshInterval
	}

	jobs := cron.New()
	if _, err := jobs.AddFunc(fmt.Sprintf("@every %s", interval), refreshJob(analytics, helper)); err != nil {
		return nil, fmt.Errorf("failed to register analytics refresh job: %w", err)
	}
	if _, err := jobs.AddFunc(breakerReportSchedule, breakerJob(breaker, helper)); err != nil {
		return nil, fmt.Errorf("failed to register circuit report job: %w", err)
	}
	helper.Cron("Cron jobs registered", "analytics_refresh_interval", interval.String(), "circuit_report", breakerReportSchedule)
	return jobs, nil
}

func refreshJob(r reportRefresher, helper *pkglog.LogHelper) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		start := time.Now()
		if err := r.Refresh(ctx); err != nil {
			helper.Errorw("msg", "Analytics refresh failed", "type", "cron", "error", err)
			return
		}
		helper.Cron("Analytics reports refreshed", "duration_ms", time.Since(start).Milliseconds())
	}
}

func breakerJob(b breakerSnapshotter, helper *pkglog.LogHelper) func() {
	return func() {
		snap := b.Snapshot()
		if snap.State == event.Closed {
			return
		}
		helper.Warnw("msg", fmt.Sprintf("Event circuit is %s", snap.State), "type", "cron",
			"state", snap.State.String(),
			"failures", snap.Failures,
			"opened_at", snap.OpenedAt,
		)
	}
}

// cronServer runs the scheduler alongside the transports.
type cronServer struct {
	jobs *cron.Cron
}

var _ transport.Server = (*cronServer)(nil)

func newCronServer(jobs *cron.Cron) *cronServer {
	return &cronServer{jobs: jobs}
}

func (s *cronServer) Start(context.Context) error {
	s.jobs.Start()
	return nil
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *cronServer) Stop(ctx context.Context) error {
	done := s.jobs.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
