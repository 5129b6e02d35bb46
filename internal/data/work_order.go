package data

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"

	pkgerrors "ServiceDesk/pkg/errors"

	"github.com/go-kratos/kratos/v2/log"
)

// WorkOrderStatus represents the status column of a work order.
type WorkOrderStatus string

// Work order statuses.
const (
	WorkOrderNew       WorkOrderStatus = "new"
	WorkOrderDone      WorkOrderStatus = "done"
	WorkOrderCancelled WorkOrderStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s WorkOrderStatus) Valid() bool {
	switch s {
	case WorkOrderNew, WorkOrderDone, WorkOrderCancelled:
		return true
	}
	return false
}

// Scan implements sql.Scanner.
func (s *WorkOrderStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = ""
	case string:
		*s = WorkOrderStatus(v)
	case []byte:
		*s = WorkOrderStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into WorkOrderStatus", value)
	}
	return nil
}

// Value implements driver.Valuer.
func (s WorkOrderStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// WorkOrder is the GORM model for the work_orders table.
type WorkOrder struct {
	ID               string          `gorm:"primaryKey;column:id;type:char(36)"`
	CustomerID       string          `gorm:"column:customer_id;type:char(36);not null;index:idx_work_orders_customer"`
	Title            string          `gorm:"column:title;size:255;not null"`
	PlannedDateBegin time.Time       `gorm:"column:planned_date_begin;not null"`
	PlannedDateEnd   time.Time       `gorm:"column:planned_date_end;not null"`
	Status           WorkOrderStatus `gorm:"column:status;type:varchar(16);not null;default:'new';index:idx_work_orders_status"`
	CreatedAt        time.Time       `gorm:"column:created_at;not null;index:idx_work_orders_created"`
	Customer         *Customer       `gorm:"foreignKey:CustomerID"`
}

// TableName specifies the table name for GORM.
func (WorkOrder) TableName() string {
	return "work_orders"
}

// WorkOrderRepo implements biz.WorkOrderRepo.
type WorkOrderRepo struct {
	data   *Data
	logger *log.Helper
}

// NewWorkOrderRepo creates a new work order repository.
func NewWorkOrderRepo(data *Data, logger log.Logger) *WorkOrderRepo {
	return &WorkOrderRepo{
		data:   data,
		logger: log.NewHelper(log.With(logger, "module", "data/work_order")),
	}
}

// Create inserts a work order.
func (r *WorkOrderRepo) Create(ctx context.Context, wo *WorkOrder) error {
	if err := r.data.DB(ctx).Omit("Customer").Create(wo).Error; err != nil {
		dbErr := pkgerrors.ClassifyDBError(err)
		r.logger.Errorw("msg", "failed to create work order", "customer_id", wo.CustomerID, "error", dbErr.Error())
		return dbErr
	}
	return nil
}

// Update writes the editable work order fields.
func (r *WorkOrderRepo) Update(ctx context.Context, wo *WorkOrder) error {
	err := r.data.DB(ctx).Model(&WorkOrder{ID: wo.ID}).
		Select("title", "planned_date_begin", "planned_date_end", "status").
		Updates(wo).Error
	if err != nil {
		return pkgerrors.ClassifyDBError(err)
	}
	return nil
}

// UpdateStatus sets the status of one work order.
func (r *WorkOrderRepo) UpdateStatus(ctx context.Context, id string, status WorkOrderStatus) error {
	err := r.data.DB(ctx).Model(&WorkOrder{}).Where("id = ?", id).Update("status", status).Error
	if err != nil {
		return pkgerrors.ClassifyDBError(err)
	}
	return nil
}

// Get returns a work order with its customer.
func (r *WorkOrderRepo) Get(ctx context.Context, id string) (*WorkOrder, error) {
	var wo WorkOrder
	if err := r.data.DB(ctx).Preload("Customer").Where("id = ?", id).First(&wo).Error; err != nil {
		return nil, pkgerrors.ClassifyDBError(err)
	}
	return &wo, nil
}

// List returns every work order, oldest first.
func (r *WorkOrderRepo) List(ctx context.Context) ([]*WorkOrder, error) {
	return r.find(ctx, "", nil)
}

// ListCreatedBetween returns work orders created in [since, until].
func (r *WorkOrderRepo) ListCreatedBetween(ctx context.Context, since, until time.Time) ([]*WorkOrder, error) {
	return r.find(ctx, "created_at BETWEEN ? AND ?", []interface{}{since, until})
}

// ListByStatus returns work orders with the given status.
func (r *WorkOrderRepo) ListByStatus(ctx context.Context, status WorkOrderStatus) ([]*WorkOrder, error) {
	return r.find(ctx, "status = ?", []interface{}{status})
}

func (r *WorkOrderRepo) find(ctx context.Context, query string, args []interface{}) ([]*WorkOrder, error) {
	db := r.data.DB(ctx)
	if query != "" {
		db = db.Where(query, args...)
	}

	var orders []*WorkOrder
	if err := db.Order("created_at").Find(&orders).Error; err != nil {
		return nil, pkgerrors.ClassifyDBError(err)
	}
	return orders, nil
}

// CountByCustomer counts a customer's work orders, optionally restricted to one status.
func (r *WorkOrderRepo) CountByCustomer(ctx context.Context, customerID string, status WorkOrderStatus) (int64, error) {
	db := r.data.DB(ctx).Model(&WorkOrder{}).Where("customer_id = ?", customerID)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, pkgerrors.ClassifyDBError(err)
	}
	return count, nil
}

// Delete removes one work order.
func (r *WorkOrderRepo) Delete(ctx context.Context, id string) error {
	if err := r.data.DB(ctx).Where("id = ?", id).Delete(&WorkOrder{}).Error; err != nil {
		return pkgerrors.ClassifyDBError(err)
	}
	return nil
}

// DeleteByCustomer removes all work orders of a customer.
func (r *WorkOrderRepo) DeleteByCustomer(ctx context.Context, customerID string) (int64, error) {
	res := r.data.DB(ctx).Where("customer_id = ?", customerID).Delete(&WorkOrder{})
	if res.Error != nil {
		return 0, pkgerrors.ClassifyDBError(res.Error)
	}
	return res.RowsAffected, nil
}
