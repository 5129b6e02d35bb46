package biz

import (
	"context"
	stderrors "errors"
	"os"
	"sync"
	"time"

	"ServiceDesk/internal/data"
	"ServiceDesk/internal/event"
	"ServiceDesk/internal/model"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/mock"
)

var testLogger = log.NewStdLogger(os.Stdout)

// MockCustomerRepo is a mock implementation of CustomerRepo for testing.
type MockCustomerRepo struct {
	mock.Mock
}

func (m *MockCustomerRepo) Create(ctx context.Context, c *data.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepo) Update(ctx context.Context, c *data.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepo) Get(ctx context.Context, id string) (*data.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.Customer), args.Error(1)
}

func (m *MockCustomerRepo) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepo) List(ctx context.Context) ([]*data.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*data.Customer), args.Error(1)
}

func (m *MockCustomerRepo) ListActive(ctx context.Context) ([]*data.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*data.Customer), args.Error(1)
}

func (m *MockCustomerRepo) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	return m.Called(ctx, id, active, at).Error(0)
}

func (m *MockCustomerRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCustomerRepo) Invalidate(ctx context.Context, id string) {
	m.Called(ctx, id)
}

// MockWorkOrderRepo is a mock implementation of WorkOrderRepo for testing.
type MockWorkOrderRepo struct {
	mock.Mock
}

func (m *MockWorkOrderRepo) Create(ctx context.Context, wo *data.WorkOrder) error {
	return m.Called(ctx, wo).Error(0)
}

func (m *MockWorkOrderRepo) Update(ctx context.Context, wo *data.WorkOrder) error {
	return m.Called(ctx, wo).Error(0)
}

func (m *MockWorkOrderRepo) UpdateStatus(ctx context.Context, id string, status data.WorkOrderStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockWorkOrderRepo) Get(ctx context.Context, id string) (*data.WorkOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderRepo) List(ctx context.Context) ([]*data.WorkOrder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*data.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderRepo) ListCreatedBetween(ctx context.Context, since, until time.Time) ([]*data.WorkOrder, error) {
	args := m.Called(ctx, since, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*data.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderRepo) ListByStatus(ctx context.Context, status data.WorkOrderStatus) ([]*data.WorkOrder, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*data.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderRepo) CountByCustomer(ctx context.Context, customerID string, status data.WorkOrderStatus) (int64, error) {
	args := m.Called(ctx, customerID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWorkOrderRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockWorkOrderRepo) DeleteByCustomer(ctx context.Context, customerID string) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

// fakeTx runs fn inline and remembers whether it committed.
type fakeTx struct {
	calls     int
	committed int
}

func (f *fakeTx) ExecTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if err := fn(ctx); err != nil {
		return err
	}
	f.committed++
	return nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt model.Event) event.PublishResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return event.PublishResult{Outcome: event.Delivered, MessageID: "1-0"}
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

func (p *recordingPublisher) Last() model.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

var fixedNow = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

var errConnRefused = stderrors.New("dial tcp 10.0.0.5:3306: connect: connection refused")
