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

// CustomerInput holds the client-editable customer fields.
type CustomerInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
}

func (in *CustomerInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Address = strings.TrimSpace(in.Address)
}

func (in CustomerInput) validate() error {
	problems := fieldErrors{}
	if in.FirstName == "" {
		problems.add("first_name", "must not be blank")
	}
	if in.LastName == "" {
		problems.add("last_name", "must not be blank")
	}
	if in.Address == "" {
		problems.add("address", "must not be blank")
	}
	return problems.err()
}

// CustomerUsecase implements customer business logic.
type CustomerUsecase struct {
	tx         Transaction
	customers  CustomerRepo
	workOrders WorkOrderRepo
	publisher  EventPublisher
	logger     *log.Helper
	now        func() time.Time
}

// NewCustomerUsecase creates a new customer usecase.
func NewCustomerUsecase(tx Transaction, customers CustomerRepo, workOrders WorkOrderRepo, publisher EventPublisher, logger log.Logger) *CustomerUsecase {
	return &CustomerUsecase{
		tx:         tx,
		customers:  customers,
		workOrders: workOrders,
		publisher:  publisher,
		logger:     log.NewHelper(log.With(logger, "module", "biz/customer")),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create validates and stores a new customer.
func (uc *CustomerUsecase) Create(ctx context.Context, in CustomerInput) (*data.Customer, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	c := &data.Customer{
		ID:        uuid.NewString(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Address:   in.Address,
		CreatedAt: uc.now(),
	}
	if err := uc.customers.Create(ctx, c); err != nil {
		return nil, mapRepoError(err, ReasonCustomerNotFound, "customer not found")
	}

	uc.logger.Infow("msg", "customer created", "customer_id", c.ID)
	uc.publisher.Publish(ctx, model.NewEvent(model.EventCustomerCreated, c.ID, customerPayload(c)))
	return c, nil
}

// Update replaces the names and address of a customer.
func (uc *CustomerUsecase) Update(ctx context.Context, id string, in CustomerInput) (*data.Customer, error) {
	if err := validateID("id", id); err != nil {
		return nil, err
	}
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	if err := uc.ensureExists(ctx, id); err != nil {
		return nil, err
	}

	c := &data.Customer{ID: id, FirstName: in.FirstName, LastName: in.LastName, Address: in.Address}
	if err := uc.customers.Update(ctx, c); err != nil {
		return nil, mapRepoError(err, ReasonCustomerNotFound, "customer not found")
	}

	uc.publisher.Publish(ctx, model.NewEvent(model.EventCustomerUpdated, id, customerPayload(c)))
	return c, nil
}

// Get returns one customer with its work orders.
func (uc *CustomerUsecase) Get(ctx context.Context, id string) (*data.Customer, error) {
	if err := validateID("id", id); err != nil {
		return nil, err
	}

	c, err := uc.customers.Get(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, ReasonCustomerNotFound, "customer with id "+id+" not found")
	}
	return c, nil
}

// List returns all customers with their work orders.
func (uc *CustomerUsecase) List(ctx context.Context) ([]*data.Customer, error) {
	customers, err := uc.customers.List(ctx)
	if err != nil {
		return nil, mapRepoError(err, ReasonCustomerNotFound, "customer not found")
	}
	return customers, nil
}

// ListActive returns customers currently flagged active.
func (uc *CustomerUsecase) ListActive(ctx context.Context) ([]*data.Customer, error) {
	customers, err := uc.customers.ListActive(ctx)
	if err != nil {
		return nil, mapRepoError(err, ReasonCustomerNotFound, "customer not found")
	}
	return customers, nil
}

// Delete removes a customer and its work orders in one transaction.
func (uc *CustomerUsecase) Delete(ctx context.Context, id string) error {
	if err := validateID("id", id); err != nil {
		return err
	}
	if err := uc.ensureExists(ctx, id); err != nil {
		return err
	}

	var removedOrders int64
	err := uc.tx.ExecTx(ctx, func(ctx context.Context) error {
		n, err := uc.workOrders.DeleteByCustomer(ctx, id)
		if err != nil {
			return err
		}
		removedOrders = n
		return uc.customers.Delete(ctx, id)
	})
	if err != nil {
		return mapRepoError(err, ReasonCustomerNotFound, "customer not found")
	}

	uc.logger.Infow("msg", "customer deleted", "customer_id", id, "work_orders_removed", removedOrders)
	uc.publisher.Publish(ctx, model.NewEvent(model.EventCustomerDeleted, id, map[string]any{
		"id":                  id,
		"work_orders_removed": removedOrders,
	}))
	return nil
}

func (uc *CustomerUsecase) ensureExists(ctx context.Context, id string) error {
	ok, err := uc.customers.Exists(ctx, id)
	if err != nil {
		return mapRepoError(err, ReasonCustomerNotFound, "customer not found")
	}
	if !ok {
		return customerNotFound(id)
	}
	return nil
}

func validateID(field, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ValidationError(map[string]string{field: "must be a valid UUID"})
	}
	return nil
}

func customerPayload(c *data.Customer) map[string]any {
	payload := map[string]any{
		"id":         c.ID,
		"first_name": c.FirstName,
		"last_name":  c.LastName,
		"address":    c.Address,
		"is_active":  c.IsActive,
	}
	if !c.CreatedAt.IsZero() {
		payload["created_at"] = c.CreatedAt.Format(time.RFC3339)
	}
	return payload
}
