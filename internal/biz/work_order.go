package biz

import (
	"context"
	"strings"
	"time"

	"ServiceDesk/internal/data"
	"ServiceDesk/internal/model"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// MinPlannedDuration is the shortest allowed planned work window.
const MinPlannedDuration = 2 * time.Hour

// WorkOrderInput holds the client-editable work order fields.
type WorkOrderInput struct {
	CustomerID       string    `json:"customer_id"`
	Title            string    `json:"title"`
	PlannedDateBegin time.Time `json:"planned_date_begin"`
	PlannedDateEnd   time.Time `json:"planned_date_end"`
	Status           string    `json:"status"`
}

func (in WorkOrderInput) validate(requireCustomer bool) error {
	problems := fieldErrors{}
	if requireCustomer {
		if _, err := uuid.Parse(in.CustomerID); err != nil {
			problems.add("customer_id", "must be a valid UUID")
		}
	}
	if strings.TrimSpace(in.Title) == "" {
		problems.add("title", "must not be blank")
	}
	switch {
	case in.PlannedDateBegin.IsZero():
		problems.add("planned_date_begin", "is required")
	case in.PlannedDateEnd.IsZero():
		problems.add("planned_date_end", "is required")
	case !in.PlannedDateEnd.After(in.PlannedDateBegin):
		problems.add("planned_date_end", "must be after planned_date_begin")
	case in.PlannedDateEnd.Sub(in.PlannedDateBegin) < MinPlannedDuration:
		problems.add("planned_date_end", "must be at least 2 hours after planned_date_begin")
	}
	if in.Status != "" && !data.WorkOrderStatus(in.Status).Valid() {
		problems.add("status", "must be one of new, done, cancelled")
	}
	return problems.err()
}

// WorkOrderUsecase implements work order business logic.
type WorkOrderUsecase struct {
	tx         Transaction
	customers  CustomerRepo
	workOrders WorkOrderRepo
	publisher  EventPublisher
	logger     *log.Helper
	now        func() time.Time
}

// NewWorkOrderUsecase creates a new work order usecase.
func NewWorkOrderUsecase(tx Transaction, customers CustomerRepo, workOrders WorkOrderRepo, publisher EventPublisher, logger log.Logger) *WorkOrderUsecase {
	return &WorkOrderUsecase{
		tx:         tx,
		customers:  customers,
		workOrders: workOrders,
		publisher:  publisher,
		logger:     log.NewHelper(log.With(logger, "module", "biz/work_order")),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new work order for an existing customer. When the customer
// already has orders and is active but the caller reports it inactive, the
// customer is deactivated in the same transaction.
func (uc *WorkOrderUsecase) Create(ctx context.Context, in WorkOrderInput, isActive bool) (*data.WorkOrder, error) {
	if err := in.validate(true); err != nil {
		return nil, err
	}

	now := uc.now()
	wo := &data.WorkOrder{
		ID:               uuid.NewString(),
		CustomerID:       in.CustomerID,
		Title:            strings.TrimSpace(in.Title),
		PlannedDateBegin: in.PlannedDateBegin.UTC(),
		PlannedDateEnd:   in.PlannedDateEnd.UTC(),
		Status:           data.WorkOrderNew,
		CreatedAt:        now,
	}

	var deactivated bool
	err := uc.tx.ExecTx(ctx, func(ctx context.Context) error {
		customer, err := uc.customers.Get(ctx, in.CustomerID)
		if err != nil {
			return err
		}

		existing, err := uc.workOrders.CountByCustomer(ctx, in.CustomerID, "")
		if err != nil {
			return err
		}
		if existing > 0 && customer.IsActive && !isActive {
			if err := uc.customers.SetActive(ctx, in.CustomerID, false, now); err != nil {
				return err
			}
			deactivated = true
		}

		return uc.workOrders.Create(ctx, wo)
	})
	if err != nil {
		return nil, mapRepoError(err, ReasonCustomerNotFound, "customer with id "+in.CustomerID+" not found")
	}

	uc.customers.Invalidate(ctx, in.CustomerID)
	if deactivated {
		uc.logger.Infow("msg", "customer deactivated", "customer_id", in.CustomerID, "work_order_id", wo.ID)
	}
	uc.publisher.Publish(ctx, model.NewEvent(model.EventWorkOrderCreated, wo.ID, workOrderPayload(wo)))
	return wo, nil
}

// Update replaces the title, dates and status of a work order.
func (uc *WorkOrderUsecase) Update(ctx context.Context, id string, in WorkOrderInput) (*data.WorkOrder, error) {
	if err := validateID("id", id); err != nil {
		return nil, err
	}
	if err := in.validate(false); err != nil {
		return nil, err
	}

	wo, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}

	wo.Title = strings.TrimSpace(in.Title)
	wo.PlannedDateBegin = in.PlannedDateBegin.UTC()
	wo.PlannedDateEnd = in.PlannedDateEnd.UTC()
	if in.Status != "" {
		wo.Status = data.WorkOrderStatus(in.Status)
	}
	if err := uc.workOrders.Update(ctx, wo); err != nil {
		return nil, mapRepoError(err, ReasonWorkOrderNotFound, "work order not found")
	}

	uc.customers.Invalidate(ctx, wo.CustomerID)
	uc.publisher.Publish(ctx, model.NewEvent(model.EventWorkOrderUpdated, wo.ID, workOrderPayload(wo)))
	return wo, nil
}

// Finish marks a work order done. The customer's first completed order
// activates the customer. The completion event is published after commit.
func (uc *WorkOrderUsecase) Finish(ctx context.Context, id string) (*data.WorkOrder, error) {
	if err := validateID("id", id); err != nil {
		return nil, err
	}

	var (
		wo        *data.WorkOrder
		activated bool
	)
	now := uc.now()
	err := uc.tx.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		wo, err = uc.workOrders.Get(ctx, id)
		if err != nil {
			return err
		}

		done, err := uc.workOrders.CountByCustomer(ctx, wo.CustomerID, data.WorkOrderDone)
		if err != nil {
			return err
		}
		if done == 0 {
			if err := uc.customers.SetActive(ctx, wo.CustomerID, true, now); err != nil {
				return err
			}
			activated = true
		}

		if err := uc.workOrders.UpdateStatus(ctx, id, data.WorkOrderDone); err != nil {
			return err
		}
		wo.Status = data.WorkOrderDone
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err, ReasonWorkOrderNotFound, "work order with id "+id+" not found")
	}

	uc.customers.Invalidate(ctx, wo.CustomerID)
	if activated {
		uc.logger.Infow("msg", "customer activated", "customer_id", wo.CustomerID, "work_order_id", wo.ID)
	}
	uc.publisher.Publish(ctx, model.NewEvent(model.EventWorkOrderCompleted, wo.ID, workOrderPayload(wo)))
	return wo, nil
}

// Get returns one work order with its customer.
func (uc *WorkOrderUsecase) Get(ctx context.Context, id string) (*data.WorkOrder, error) {
	if err := validateID("id", id); err != nil {
		return nil, err
	}
	return uc.get(ctx, id)
}

func (uc *WorkOrderUsecase) get(ctx context.Context, id string) (*data.WorkOrder, error) {
	wo, err := uc.workOrders.Get(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, ReasonWorkOrderNotFound, "work order with id "+id+" not found")
	}
	return wo, nil
}

// List returns all work orders.
func (uc *WorkOrderUsecase) List(ctx context.Context) ([]*data.WorkOrder, error) {
	orders, err := uc.workOrders.List(ctx)
	if err != nil {
		return nil, mapRepoError(err, ReasonWorkOrderNotFound, "work order not found")
	}
	return orders, nil
}

// SearchQuery selects work orders by creation range or by status.
type SearchQuery struct {
	Since  *time.Time
	Until  *time.Time
	Status string
}

// Search returns work orders created in [Since, Until] when both are set,
// otherwise those with Status.
func (uc *WorkOrderUsecase) Search(ctx context.Context, q SearchQuery) ([]*data.WorkOrder, error) {
	var (
		orders []*data.WorkOrder
		err    error
	)
	switch {
	case q.Since != nil && q.Until != nil:
		if q.Until.Before(*q.Since) {
			return nil, ValidationError(map[string]string{"until": "must not be before since"})
		}
		orders, err = uc.workOrders.ListCreatedBetween(ctx, q.Since.UTC(), q.Until.UTC())
	case q.Status != "":
		if !data.WorkOrderStatus(q.Status).Valid() {
			return nil, ValidationError(map[string]string{"status": "must be one of new, done, cancelled"})
		}
		orders, err = uc.workOrders.ListByStatus(ctx, data.WorkOrderStatus(q.Status))
	default:
		return nil, ValidationError(map[string]string{
			"query": "provide both since and until, or a status",
		})
	}
	if err != nil {
		return nil, mapRepoError(err, ReasonWorkOrderNotFound, "work order not found")
	}
	return orders, nil
}

// Delete removes one work order.
func (uc *WorkOrderUsecase) Delete(ctx context.Context, id string) error {
	wo, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.workOrders.Delete(ctx, id); err != nil {
		return mapRepoError(err, ReasonWorkOrderNotFound, "work order not found")
	}

	uc.customers.Invalidate(ctx, wo.CustomerID)
	uc.publisher.Publish(ctx, model.NewEvent(model.EventWorkOrderDeleted, id, map[string]any{
		"id":          id,
		"customer_id": wo.CustomerID,
	}))
	return nil
}

func workOrderPayload(wo *data.WorkOrder) map[string]any {
	return map[string]any{
		"id":                 wo.ID,
		"customer_id":        wo.CustomerID,
		"title":              wo.Title,
		"planned_date_begin": wo.PlannedDateBegin.Format(time.RFC3339),
		"planned_date_end":   wo.PlannedDateEnd.Format(time.RFC3339),
		"status":             string(wo.Status),
		"created_at":         wo.CreatedAt.Format(time.RFC3339),
	}
}
