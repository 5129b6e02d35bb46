package biz

import (
	"context"
	"time"

	"ServiceDesk/internal/data"
	"ServiceDesk/internal/event"
	"ServiceDesk/internal/model"
)

// Transaction runs fn in one database transaction. Repositories called with
// the ctx handed to fn join it.
type Transaction interface {
	ExecTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CustomerRepo defines the customer repository interface.
// Following Kratos v2 DDD architecture, interfaces are defined in biz layer.
// Implementation is in data layer (data.CustomerRepo).
type CustomerRepo interface {
	Create(ctx context.Context, c *data.Customer) error
	Update(ctx context.Context, c *data.Customer) error
	Get(ctx context.Context, id string) (*data.Customer, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]*data.Customer, error)
	ListActive(ctx context.Context) ([]*data.Customer, error)
	SetActive(ctx context.Context, id string, active bool, at time.Time) error
	Delete(ctx context.Context, id string) error
	Invalidate(ctx context.Context, id string)
}

// WorkOrderRepo defines the work order repository interface.
type WorkOrderRepo interface {
	Create(ctx context.Context, wo *data.WorkOrder) error
	Update(ctx context.Context, wo *data.WorkOrder) error
	UpdateStatus(ctx context.Context, id string, status data.WorkOrderStatus) error
	Get(ctx context.Context, id string) (*data.WorkOrder, error)
	List(ctx context.Context) ([]*data.WorkOrder, error)
	ListCreatedBetween(ctx context.Context, since, until time.Time) ([]*data.WorkOrder, error)
	ListByStatus(ctx context.Context, status data.WorkOrderStatus) ([]*data.WorkOrder, error)
	CountByCustomer(ctx context.Context, customerID string, status data.WorkOrderStatus) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByCustomer(ctx context.Context, customerID string) (int64, error)
}

// AnalyticsRepo defines the reporting queries.
type AnalyticsRepo interface {
	AverageDurationSeconds(ctx context.Context) (float64, bool, error)
	OrderFrequency(ctx context.Context) ([]data.OrderFrequencyRow, error)
	CustomerActivity(ctx context.Context) ([]data.ActivityRow, error)
	CountActiveCustomers(ctx context.Context, start, end time.Time) (int64, error)
}

// RateLimitRepo counts requests per client in fixed windows.
type RateLimitRepo interface {
	Increment(ctx context.Context, client string) int64
}

// EventPublisher delivers domain events. Delivery problems are reported in
// the result and never fail the caller.
type EventPublisher interface {
	Publish(ctx context.Context, evt model.Event) event.PublishResult
}
