package service

import (
	"context"

	"ServiceDesk/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
)

// Operation names reported to middleware.
const (
	OperationWorkOrderCreate = "/servicedesk.v1.WorkOrder/CreateWorkOrder"
	OperationWorkOrderUpdate = "/servicedesk.v1.WorkOrder/UpdateWorkOrder"
	OperationWorkOrderFinish = "/servicedesk.v1.WorkOrder/FinishWorkOrder"
	OperationWorkOrderList   = "/servicedesk.v1.WorkOrder/ListWorkOrders"
	OperationWorkOrderSearch = "/servicedesk.v1.WorkOrder/SearchWorkOrders"
	OperationWorkOrderGet    = "/servicedesk.v1.WorkOrder/GetWorkOrder"
	OperationWorkOrderDelete = "/servicedesk.v1.WorkOrder/DeleteWorkOrder"
)

// WorkOrderService serves /v1/work_orders.
type WorkOrderService struct {
	uc     *biz.WorkOrderUsecase
	logger *log.Helper
}

// NewWorkOrderService creates a new WorkOrderService instance.
func NewWorkOrderService(uc *biz.WorkOrderUsecase, logger log.Logger) *WorkOrderService {
	return &WorkOrderService{
		uc:     uc,
		logger: log.NewHelper(log.With(logger, "module", "service/work_order")),
	}
}

// CreateWorkOrderRequest carries the new order and the is_active query flag.
type CreateWorkOrderRequest struct {
	IsActive bool `json:"-"`
	biz.WorkOrderInput
}

// UpdateWorkOrderRequest replaces title, dates and status of an order.
type UpdateWorkOrderRequest struct {
	ID string `json:"-"`
	biz.WorkOrderInput
}

// CreateWorkOrder creates a work order for an existing customer.
func (s *WorkOrderService) CreateWorkOrder(ctx context.Context, req *CreateWorkOrderRequest) (*WorkOrderReply, error) {
	s.logger.Debugw("msg", "CreateWorkOrder called", "customer_id", req.CustomerID, "is_active", req.IsActive)

	wo, err := s.uc.Create(ctx, req.WorkOrderInput, req.IsActive)
	if err != nil {
		return nil, err
	}
	return toWorkOrderReply(wo), nil
}

// UpdateWorkOrder updates an existing order.
func (s *WorkOrderService) UpdateWorkOrder(ctx context.Context, req *UpdateWorkOrderRequest) (*MessageReply, error) {
	if _, err := s.uc.Update(ctx, req.ID, req.WorkOrderInput); err != nil {
		return nil, err
	}
	return &MessageReply{Message: "work order updated", ID: req.ID}, nil
}

// FinishWorkOrder marks an order done.
func (s *WorkOrderService) FinishWorkOrder(ctx context.Context, req *IDRequest) (*MessageReply, error) {
	s.logger.Infow("msg", "FinishWorkOrder called", "id", req.ID)

	if _, err := s.uc.Finish(ctx, req.ID); err != nil {
		return nil, err
	}
	return &MessageReply{Message: "work order completed", ID: req.ID}, nil
}

// ListWorkOrders returns every work order.
func (s *WorkOrderService) ListWorkOrders(ctx context.Context) ([]*WorkOrderReply, error) {
	orders, err := s.uc.List(ctx)
	if err != nil {
		return nil, err
	}
	return toWorkOrderReplies(orders), nil
}

// SearchWorkOrders filters work orders by creation range or status.
func (s *WorkOrderService) SearchWorkOrders(ctx context.Context, req *biz.SearchQuery) ([]*WorkOrderReply, error) {
	orders, err := s.uc.Search(ctx, *req)
	if err != nil {
		return nil, err
	}
	return toWorkOrderReplies(orders), nil
}

// GetWorkOrder returns one order with its customer.
func (s *WorkOrderService) GetWorkOrder(ctx context.Context, req *IDRequest) (*WorkOrderReply, error) {
	wo, err := s.uc.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return toWorkOrderReply(wo), nil
}

// DeleteWorkOrder removes one order.
func (s *WorkOrderService) DeleteWorkOrder(ctx context.Context, req *IDRequest) error {
	s.logger.Infow("msg", "DeleteWorkOrder called", "id", req.ID)
	return s.uc.Delete(ctx, req.ID)
}

func decodeSearch(ctx http.Context, in *biz.SearchQuery) error {
	q := ctx.Query()
	since, err := parseTimeParam(q, "since")
	if err != nil {
		return err
	}
	until, err := parseTimeParam(q, "until")
	if err != nil {
		return err
	}
	in.Since, in.Until, in.Status = since, until, q.Get("status")
	return nil
}

// RegisterWorkOrderHTTPServer registers the work order routes on s. Fixed
// paths are registered before /{id} so they take precedence.
func RegisterWorkOrderHTTPServer(s *http.Server, srv *WorkOrderService) {
	r := s.Route("/v1")
	r.POST("/work_orders", route(OperationWorkOrderCreate, 201,
		func(ctx http.Context, in *CreateWorkOrderRequest) error {
			active, err := parseBoolParam(ctx.Query(), "is_active")
			if err != nil {
				return err
			}
			if err := ctx.Bind(in); err != nil {
				return err
			}
			in.IsActive = active
			return nil
		},
		func(ctx context.Context, in *CreateWorkOrderRequest) (interface{}, error) { return srv.CreateWorkOrder(ctx, in) },
	))
	r.GET("/work_orders", route(OperationWorkOrderList, 200, nil,
		func(ctx context.Context, _ *struct{}) (interface{}, error) { return srv.ListWorkOrders(ctx) },
	))
	r.GET("/work_orders/status-or-date", route(OperationWorkOrderSearch, 200, decodeSearch,
		func(ctx context.Context, in *biz.SearchQuery) (interface{}, error) { return srv.SearchWorkOrders(ctx, in) },
	))
	r.GET("/work_orders/{id}", route(OperationWorkOrderGet, 200, decodeID,
		func(ctx context.Context, in *IDRequest) (interface{}, error) { return srv.GetWorkOrder(ctx, in) },
	))
	r.PUT("/work_orders/{id}/status/done", route(OperationWorkOrderFinish, 202, decodeID,
		func(ctx context.Context, in *IDRequest) (interface{}, error) { return srv.FinishWorkOrder(ctx, in) },
	))
	r.PUT("/work_orders/{id}", route(OperationWorkOrderUpdate, 202,
		func(ctx http.Context, in *UpdateWorkOrderRequest) error {
			if err := ctx.Bind(in); err != nil {
				return err
			}
			in.ID = ctx.Vars().Get("id")
			return nil
		},
		func(ctx context.Context, in *UpdateWorkOrderRequest) (interface{}, error) { return srv.UpdateWorkOrder(ctx, in) },
	))
	r.DELETE("/work_orders/{id}", route(OperationWorkOrderDelete, 204, decodeID,
		func(ctx context.Context, in *IDRequest) (interface{}, error) { return nil, srv.DeleteWorkOrder(ctx, in) },
	))
}
