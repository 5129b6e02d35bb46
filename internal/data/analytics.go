package data

import (
	"context"
	"database/sql"
	"time"

	pkgerrors "ServiceDesk/pkg/errors"

	"github.com/go-kratos/kratos/v2/log"
)

// OrderFrequencyRow is one customer with its work order count.
type OrderFrequencyRow struct {
	CustomerID string `gorm:"column:customer_id" json:"customer_id"`
	OrderCount int64  `gorm:"column:order_count" json:"order_count"`
}

// ActivityRow is the number of work orders created in one calendar month.
type ActivityRow struct {
	Year        int   `gorm:"column:year" json:"year"`
	Month       int   `gorm:"column:month" json:"month"`
	TotalOrders int64 `gorm:"column:total_orders" json:"total_orders"`
}

// AnalyticsRepo runs the reporting queries.
type AnalyticsRepo struct {
	data   *Data
	logger *log.Helper
}

// NewAnalyticsRepo creates a new analytics repository.
func NewAnalyticsRepo(data *Data, logger log.Logger) *AnalyticsRepo {
	return &AnalyticsRepo{
		data:   data,
		logger: log.NewHelper(log.With(logger, "module", "data/analytics")),
	}
}

// AverageDurationSeconds returns the mean planned duration of done work
// orders. ok is false when there are none.
func (r *AnalyticsRepo) AverageDurationSeconds(ctx context.Context) (avg float64, ok bool, err error) {
	var result sql.NullFloat64
	row := r.data.DB(ctx).Model(&WorkOrder{}).
		Select("AVG(TIMESTAMPDIFF(SECOND, planned_date_begin, planned_date_end))").
		Where("status = ?", WorkOrderDone).
		Row()
	if err = row.Scan(&result); err != nil {
		return 0, false, pkgerrors.ClassifyDBError(err)
	}
	return result.Float64, result.Valid, nil
}

// OrderFrequency returns work order counts per customer, busiest first.
func (r *AnalyticsRepo) OrderFrequency(ctx context.Context) ([]OrderFrequencyRow, error) {
	var rows []OrderFrequencyRow
	err := r.data.DB(ctx).Table("customers").
		Select("customers.id AS customer_id, COUNT(work_orders.id) AS order_count").
		Joins("JOIN work_orders ON work_orders.customer_id = customers.id").
		Group("customers.id").
		Order("order_count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.ClassifyDBError(err)
	}
	return rows, nil
}

// CustomerActivity returns work order counts grouped by creation month.
func (r *AnalyticsRepo) CustomerActivity(ctx context.Context) ([]ActivityRow, error) {
	var rows []ActivityRow
	err := r.data.DB(ctx).Model(&WorkOrder{}).
		Select("YEAR(created_at) AS year, MONTH(created_at) AS month, COUNT(id) AS total_orders").
		Group("YEAR(created_at), MONTH(created_at)").
		Order("year, month").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.ClassifyDBError(err)
	}
	return rows, nil
}

// CountActiveCustomers counts active customers whose start_date is in [start, end].
func (r *AnalyticsRepo) CountActiveCustomers(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.data.DB(ctx).Model(&Customer{}).
		Where("is_active = ? AND start_date >= ? AND start_date <= ?", true, start, end).
		Count(&count).Error
	if err != nil {
		return 0, pkgerrors.ClassifyDBError(err)
	}
	r.logger.Debugw("msg", "counted active customers", "start", start, "end", end, "count", count)
	return count, nil
}
