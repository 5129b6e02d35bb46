package data

import (
	"context"
	"time"

	pkgerrors "ServiceDesk/pkg/errors"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// Customer is the GORM model for the customers table.
type Customer struct {
	ID         string      `gorm:"primaryKey;column:id;type:char(36)"`
	FirstName  string      `gorm:"column:first_name;size:100;not null"`
	LastName   string      `gorm:"column:last_name;size:100;not null"`
	Address    string      `gorm:"column:address;size:255;not null"`
	StartDate  *time.Time  `gorm:"column:start_date"`
	EndDate    *time.Time  `gorm:"column:end_date"`
	IsActive   bool        `gorm:"column:is_active;not null;default:false;index:idx_customers_active"`
	CreatedAt  time.Time   `gorm:"column:created_at;not null"`
	WorkOrders []WorkOrder `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM.
func (Customer) TableName() string {
	return "customers"
}

// CustomerRepo implements biz.CustomerRepo.
type CustomerRepo struct {
	data   *Data
	cache  CacheClient
	logger *log.Helper
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(data *Data, logger log.Logger) *CustomerRepo {
	return &CustomerRepo{
		data:   data,
		cache:  data.GetCache(),
		logger: log.NewHelper(log.With(logger, "module", "data/customer")),
	}
}

func customerCacheKey(id string) string {
	return BuildCacheKey(CacheKeyCustomer, id)
}

// Create inserts a customer.
func (r *CustomerRepo) Create(ctx context.Context, c *Customer) error {
	if err := r.data.DB(ctx).Omit("WorkOrders").Create(c).Error; err != nil {
		dbErr := pkgerrors.ClassifyDBError(err)
		r.logger.Errorw("msg", "failed to create customer", "error", dbErr.Error())
		return dbErr
	}
	return nil
}

// Update writes the editable customer fields.
func (r *CustomerRepo) Update(ctx context.Context, c *Customer) error {
	err := r.data.DB(ctx).Model(&Customer{ID: c.ID}).
		Select("first_name", "last_name", "address").
		Updates(c).Error
	if err != nil {
		return pkgerrors.ClassifyDBError(err)
	}
	r.invalidate(ctx, c.ID)
	return nil
}

// Get returns a customer with its work orders. Reads are cached for TTLCustomer.
// A missing row is reported as a pkgerrors.DatabaseError of type ErrorTypeNotFound.
func (r *CustomerRepo) Get(ctx context.Context, id string) (*Customer, error) {
	key := customerCacheKey(id)

	var cached Customer
	if err := r.cache.Get(ctx, key, &cached); err == nil {
		r.logger.Debugw("msg", "customer cache hit", "id", id)
		return &cached, nil
	}

	var c Customer
	err := r.data.DB(ctx).
		Preload("WorkOrders", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, pkgerrors.ClassifyDBError(err)
	}

	if err := r.cache.Set(ctx, key, &c, TTLCustomer); err != nil {
		r.logger.Warnw("msg", "failed to cache customer", "id", id, "error", err)
	}
	return &c, nil
}

// Exists reports whether a customer row exists, bypassing the cache.
func (r *CustomerRepo) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.data.DB(ctx).Model(&Customer{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, pkgerrors.ClassifyDBError(err)
	}
	return count > 0, nil
}

// List returns every customer with their work orders.
func (r *CustomerRepo) List(ctx context.Context) ([]*Customer, error) {
	var customers []*Customer
	err := r.data.DB(ctx).Preload("WorkOrders").Order("created_at").Find(&customers).Error
	if err != nil {
		return nil, pkgerrors.ClassifyDBError(err)
	}
	return customers, nil
}

// ListActive returns customers flagged active.
func (r *CustomerRepo) ListActive(ctx context.Context) ([]*Customer, error) {
	var customers []*Customer
	err := r.data.DB(ctx).Where("is_active = ?", true).Order("created_at").Find(&customers).Error
	if err != nil {
		return nil, pkgerrors.ClassifyDBError(err)
	}
	return customers, nil
}

// SetActive activates (stamping start_date) or deactivates (stamping end_date) a customer.
func (r *CustomerRepo) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	updates := map[string]interface{}{"is_active": active}
	if active {
		updates["start_date"] = at
	} else {
		updates["end_date"] = at
	}

	if err := r.data.DB(ctx).Model(&Customer{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return pkgerrors.ClassifyDBError(err)
	}
	r.invalidate(ctx, id)
	return nil
}

// Delete removes a customer row. Work orders must be removed first.
func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	res := r.data.DB(ctx).Where("id = ?", id).Delete(&Customer{})
	if res.Error != nil {
		return pkgerrors.ClassifyDBError(res.Error)
	}
	r.invalidate(ctx, id)
	return nil
}

// Invalidate drops the cached copy of a customer.
func (r *CustomerRepo) Invalidate(ctx context.Context, id string) {
	r.invalidate(ctx, id)
}

func (r *CustomerRepo) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, customerCacheKey(id)); err != nil {
		r.logger.Warnw("msg", "failed to delete customer cache", "id", id, "error", err)
	}
}
