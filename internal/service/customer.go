package service

import (
	"context"

	"ServiceDesk/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
)

// Operation names reported to middleware.
const (
	OperationCustomerCreate     = "/servicedesk.v1.Customer/CreateCustomer"
	OperationCustomerUpdate     = "/servicedesk.v1.Customer/UpdateCustomer"
	OperationCustomerList       = "/servicedesk.v1.Customer/ListCustomers"
	OperationCustomerListActive = "/servicedesk.v1.Customer/ListActiveCustomers"
	OperationCustomerGet        = "/servicedesk.v1.Customer/GetCustomer"
	OperationCustomerDelete     = "/servicedesk.v1.Customer/DeleteCustomer"
)

// CustomerService serves /v1/customers.
type CustomerService struct {
	uc     *biz.CustomerUsecase
	logger *log.Helper
}

// NewCustomerService creates a new CustomerService instance.
func NewCustomerService(uc *biz.CustomerUsecase, logger log.Logger) *CustomerService {
	return &CustomerService{
		uc:     uc,
		logger: log.NewHelper(log.With(logger, "module", "service/customer")),
	}
}

// UpdateCustomerRequest replaces the editable fields of a customer.
type UpdateCustomerRequest struct {
	ID string `json:"-"`
	biz.CustomerInput
}

// CreateCustomer creates a new customer.
func (s *CustomerService) CreateCustomer(ctx context.Context, req *biz.CustomerInput) (*CustomerReply, error) {
	c, err := s.uc.Create(ctx, *req)
	if err != nil {
		return nil, err
	}
	return toCustomerReply(c), nil
}

// UpdateCustomer updates names and address of a customer.
func (s *CustomerService) UpdateCustomer(ctx context.Context, req *UpdateCustomerRequest) (*MessageReply, error) {
	s.logger.Debugw("msg", "UpdateCustomer called", "id", req.ID)

	if _, err := s.uc.Update(ctx, req.ID, req.CustomerInput); err != nil {
		return nil, err
	}
	return &MessageReply{Message: "customer updated", ID: req.ID}, nil
}

// ListCustomers returns every customer with their work orders.
func (s *CustomerService) ListCustomers(ctx context.Context) ([]*CustomerReply, error) {
	customers, err := s.uc.List(ctx)
	if err != nil {
		return nil, err
	}
	return toCustomerReplies(customers), nil
}

// ListActiveCustomers returns the active customers.
func (s *CustomerService) ListActiveCustomers(ctx context.Context) ([]*CustomerReply, error) {
	customers, err := s.uc.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return toCustomerReplies(customers), nil
}

// GetCustomer returns one customer with their work orders.
func (s *CustomerService) GetCustomer(ctx context.Context, req *IDRequest) (*CustomerReply, error) {
	c, err := s.uc.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return toCustomerReply(c), nil
}

// DeleteCustomer removes a customer and their work orders.
func (s *CustomerService) DeleteCustomer(ctx context.Context, req *IDRequest) error {
	s.logger.Infow("msg", "DeleteCustomer called", "id", req.ID)
	return s.uc.Delete(ctx, req.ID)
}

// RegisterCustomerHTTPServer registers the customer routes on s.
func RegisterCustomerHTTPServer(s *http.Server, srv *CustomerService) {
	r := s.Route("/v1")
	r.POST("/customers", route(OperationCustomerCreate, 201,
		func(ctx http.Context, in *biz.CustomerInput) error { return ctx.Bind(in) },
		func(ctx context.Context, in *biz.CustomerInput) (interface{}, error) { return srv.CreateCustomer(ctx, in) },
	))
	r.GET("/customers", route(OperationCustomerList, 200, nil,
		func(ctx context.Context, _ *struct{}) (interface{}, error) { return srv.ListCustomers(ctx) },
	))
	r.GET("/customers/active", route(OperationCustomerListActive, 200, nil,
		func(ctx context.Context, _ *struct{}) (interface{}, error) { return srv.ListActiveCustomers(ctx) },
	))
	r.GET("/customers/{id}", route(OperationCustomerGet, 200, decodeID,
		func(ctx context.Context, in *IDRequest) (interface{}, error) { return srv.GetCustomer(ctx, in) },
	))
	r.PUT("/customers/{id}", route(OperationCustomerUpdate, 202,
		func(ctx http.Context, in *UpdateCustomerRequest) error {
			if err := ctx.Bind(in); err != nil {
				return err
			}
			in.ID = ctx.Vars().Get("id")
			return nil
		},
		func(ctx context.Context, in *UpdateCustomerRequest) (interface{}, error) { return srv.UpdateCustomer(ctx, in) },
	))
	r.DELETE("/customers/{id}", route(OperationCustomerDelete, 204, decodeID,
		func(ctx context.Context, in *IDRequest) (interface{}, error) { return nil, srv.DeleteCustomer(ctx, in) },
	))
}
