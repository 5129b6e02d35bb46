// Package biz contains business logic layer implementations.
// This layer holds the core business rules and domain models.
package biz

import (
	"ServiceDesk/internal/data"
	"ServiceDesk/internal/event"

	"github.com/google/wire"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(
	NewCustomerUsecase,
	NewWorkOrderUsecase,
	NewAnalyticsUsecase,
	NewRateLimiterUseCase,
	// Bind data layer implementations to biz layer interfaces
	wire.Bind(new(Transaction), new(*data.Data)),
	wire.Bind(new(CustomerRepo), new(*data.CustomerRepo)),
	wire.Bind(new(WorkOrderRepo), new(*data.WorkOrderRepo)),
	wire.Bind(new(AnalyticsRepo), new(*data.AnalyticsRepo)),
	wire.Bind(new(RateLimitRepo), new(*data.RateLimitRepo)),
	wire.Bind(new(EventPublisher), new(*event.Publisher)),
)
