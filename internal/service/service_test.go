package service

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"ServiceDesk/internal/biz"
	"ServiceDesk/internal/data"
	"ServiceDesk/internal/event"
	"ServiceDesk/internal/model"
	pkgerrors "ServiceDesk/pkg/errors"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memStore is an in-memory backing for the customer and work order repos.
type memStore struct {
	mu         sync.Mutex
	customers  map[string]*data.Customer
	workOrders map[string]*data.WorkOrder
	failWith   error
}

func newMemStore() *memStore {
	return &memStore{
		customers:  map[string]*data.Customer{},
		workOrders: map[string]*data.WorkOrder{},
	}
}

func notFound() error {
	return pkgerrors.ClassifyDBError(gorm.ErrRecordNotFound)
}

type memCustomers struct{ s *memStore }

func (m memCustomers) Create(_ context.Context, c *data.Customer) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.failWith != nil {
		return m.s.failWith
	}
	cp := *c
	m.s.customers[c.ID] = &cp
	return nil
}

func (m memCustomers) Update(_ context.Context, c *data.Customer) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored := m.s.customers[c.ID]
	stored.FirstName, stored.LastName, stored.Address = c.FirstName, c.LastName, c.Address
	return nil
}

func (m memCustomers) Get(_ context.Context, id string) (*data.Customer, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.failWith != nil {
		return nil, m.s.failWith
	}
	c, ok := m.s.customers[id]
	if !ok {
		return nil, notFound()
	}
	cp := *c
	cp.WorkOrders = nil
	for _, wo := range m.s.sortedOrders() {
		if wo.CustomerID == id {
			cp.WorkOrders = append(cp.WorkOrders, *wo)
		}
	}
	return &cp, nil
}

func (m memCustomers) Exists(_ context.Context, id string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_, ok := m.s.customers[id]
	return ok, nil
}

func (m memCustomers) List(ctx context.Context) ([]*data.Customer, error) {
	return m.filter(ctx, func(*data.Customer) bool { return true })
}

func (m memCustomers) ListActive(ctx context.Context) ([]*data.Customer, error) {
	return m.filter(ctx, func(c *data.Customer) bool { return c.IsActive })
}

func (m memCustomers) filter(ctx context.Context, keep func(*data.Customer) bool) ([]*data.Customer, error) {
	m.s.mu.Lock()
	ids := make([]string, 0, len(m.s.customers))
	for id, c := range m.s.customers {
		if keep(c) {
			ids = append(ids, id)
		}
	}
	m.s.mu.Unlock()
	sort.Strings(ids)

	out := make([]*data.Customer, 0, len(ids))
	for _, id := range ids {
		c, err := m.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (m memCustomers) SetActive(_ context.Context, id string, active bool, at time.Time) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c := m.s.customers[id]
	c.IsActive = active
	if active {
		c.StartDate = &at
	} else {
		c.EndDate = &at
	}
	return nil
}

func (m memCustomers) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.customers, id)
	return nil
}

func (m memCustomers) Invalidate(context.Context, string) {}

type memWorkOrders struct{ s *memStore }

func (s *memStore) sortedOrders() []*data.WorkOrder {
	out := make([]*data.WorkOrder, 0, len(s.workOrders))
	for _, wo := range s.workOrders {
		out = append(out, wo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m memWorkOrders) Create(_ context.Context, wo *data.WorkOrder) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *wo
	m.s.workOrders[wo.ID] = &cp
	return nil
}

func (m memWorkOrders) Update(_ context.Context, wo *data.WorkOrder) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *wo
	cp.Customer = nil
	m.s.workOrders[wo.ID] = &cp
	return nil
}

func (m memWorkOrders) UpdateStatus(_ context.Context, id string, status data.WorkOrderStatus) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.workOrders[id].Status = status
	return nil
}

func (m memWorkOrders) Get(_ context.Context, id string) (*data.WorkOrder, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	wo, ok := m.s.workOrders[id]
	if !ok {
		return nil, notFound()
	}
	cp := *wo
	if c, ok := m.s.customers[wo.CustomerID]; ok {
		owner := *c
		cp.Customer = &owner
	}
	return &cp, nil
}

func (m memWorkOrders) List(context.Context) ([]*data.WorkOrder, error) {
	return m.where(func(*data.WorkOrder) bool { return true }), nil
}

func (m memWorkOrders) ListCreatedBetween(_ context.Context, since, until time.Time) ([]*data.WorkOrder, error) {
	return m.where(func(wo *data.WorkOrder) bool {
		return !wo.CreatedAt.Before(since) && !wo.CreatedAt.After(until)
	}), nil
}

func (m memWorkOrders) ListByStatus(_ context.Context, status data.WorkOrderStatus) ([]*data.WorkOrder, error) {
	return m.where(func(wo *data.WorkOrder) bool { return wo.Status == status }), nil
}

func (m memWorkOrders) where(keep func(*data.WorkOrder) bool) []*data.WorkOrder {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*data.WorkOrder
	for _, wo := range m.s.sortedOrders() {
		if keep(wo) {
			cp := *wo
			out = append(out, &cp)
		}
	}
	return out
}

func (m memWorkOrders) CountByCustomer(_ context.Context, customerID string, status data.WorkOrderStatus) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for _, wo := range m.s.workOrders {
		if wo.CustomerID == customerID && (status == "" || wo.Status == status) {
			n++
		}
	}
	return n, nil
}

func (m memWorkOrders) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.workOrders, id)
	return nil
}

func (m memWorkOrders) DeleteByCustomer(_ context.Context, customerID string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for id, wo := range m.s.workOrders {
		if wo.CustomerID == customerID {
			delete(m.s.workOrders, id)
			n++
		}
	}
	return n, nil
}

type inlineTx struct{}

func (inlineTx) ExecTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

func (p *memPublisher) Publish(_ context.Context, evt model.Event) event.PublishResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return event.PublishResult{Outcome: event.Delivered}
}

func (p *memPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testServer struct {
	*httptest.Server
	store     *memStore
	publisher *memPublisher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := log.DefaultLogger
	store := newMemStore()
	publisher := &memPublisher{}
	customers, workOrders := memCustomers{store}, memWorkOrders{store}

	srv := http.NewServer()
	RegisterCustomerHTTPServer(srv, NewCustomerService(
		biz.NewCustomerUsecase(inlineTx{}, customers, workOrders, publisher, logger), logger))
	RegisterWorkOrderHTTPServer(srv, NewWorkOrderService(
		biz.NewWorkOrderUsecase(inlineTx{}, customers, workOrders, publisher, logger), logger))

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, store: store, publisher: publisher}
}

func (ts *testServer) do(t *testing.T, method, path, body string) (*nethttp.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := nethttp.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decodeBody(t *testing.T, raw []byte, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}

// errorBody is the JSON rendering of a kratos error.
type errorBody struct {
	Code     int               `json:"code"`
	Reason   string            `json:"reason"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata"`
}
