package iorderrepo

import (
	"context"
	"time"

	"github.com/corray333/backend-labs/adminlocal/internal/service/models/order"
	"github.com/shopspring/decimal"
)

// IOrderRepository is an interface for the storefront order store.
type IOrderRepository interface {
	// NewOrders returns PENDING orders created strictly after since, newest first.
	NewOrders(ctx context.Context, since time.Time) ([]order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	Count(ctx context.Context, filter *order.QueryOrdersModel) (int, error)
	GetByID(ctx context.Context, id string) (order.Order, error)
	UpdateStatus(ctx context.Context, id string, status order.Status, notes string) error
	CountByStatus(ctx context.Context, status order.Status, since *time.Time) (int, error)
	SumTotals(ctx context.Context, statuses []order.Status) (decimal.Decimal, error)
}
