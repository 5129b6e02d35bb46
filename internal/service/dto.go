package service

import (
	"time"

	"ServiceDesk/internal/data"
)

// CustomerReply is the JSON view of a customer.
type CustomerReply struct {
	ID         string            `json:"id"`
	FirstName  string            `json:"first_name"`
	LastName   string            `json:"last_name"`
	Address    string            `json:"address"`
	StartDate  *time.Time        `json:"start_date"`
	EndDate    *time.Time        `json:"end_date"`
	IsActive   bool              `json:"is_active"`
	CreatedAt  time.Time         `json:"created_at"`
	WorkOrders []*WorkOrderReply `json:"work_orders,omitempty"`
}

// WorkOrderReply is the JSON view of a work order.
type WorkOrderReply struct {
	ID               string         `json:"id"`
	CustomerID       string         `json:"customer_id"`
	Title            string         `json:"title"`
	PlannedDateBegin time.Time      `json:"planned_date_begin"`
	PlannedDateEnd   time.Time      `json:"planned_date_end"`
	Status           string         `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	Customer         *CustomerReply `json:"customer,omitempty"`
}

func toCustomerReply(c *data.Customer) *CustomerReply {
	if c == nil {
		return nil
	}
	reply := &CustomerReply{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Address:   c.Address,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
	}
	for i := range c.WorkOrders {
		reply.WorkOrders = append(reply.WorkOrders, toWorkOrderReply(&c.WorkOrders[i]))
	}
	return reply
}

func toCustomerReplies(customers []*data.Customer) []*CustomerReply {
	replies := make([]*CustomerReply, 0, len(customers))
	for _, c := range customers {
		replies = append(replies, toCustomerReply(c))
	}
	return replies
}

func toWorkOrderReply(wo *data.WorkOrder) *WorkOrderReply {
	if wo == nil {
		return nil
	}
	return &WorkOrderReply{
		ID:               wo.ID,
		CustomerID:       wo.CustomerID,
		Title:            wo.Title,
		PlannedDateBegin: wo.PlannedDateBegin,
		PlannedDateEnd:   wo.PlannedDateEnd,
		Status:           string(wo.Status),
		CreatedAt:        wo.CreatedAt,
		Customer:         toCustomerReply(wo.Customer),
	}
}

func toWorkOrderReplies(orders []*data.WorkOrder) []*WorkOrderReply {
	replies := make([]*WorkOrderReply, 0, len(orders))
	for _, wo := range orders {
		replies = append(replies, toWorkOrderReply(wo))
	}
	return replies
}
