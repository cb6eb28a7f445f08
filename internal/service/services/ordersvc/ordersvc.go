package ordersvc

import (
	"context"
	"fmt"
	"time"

	"github.com/corray333/backend-labs/adminlocal/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/apperr"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/order"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultLimit = 50
	recentLimit  = 10
)

// revenueStatuses are the statuses whose totals count as revenue.
var revenueStatuses = []order.Status{
	order.StatusProcessing,
	order.StatusShipped,
	order.StatusDelivered,
}

// OrderService is a service for reading and updating storefront orders.
type OrderService struct {
	repo     iorderrepo.IOrderRepository
	now      func() time.Time
	location *time.Location
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		now:      time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.repo == nil {
		panic("ordersvc: order repository is required")
	}

	return s
}

// WithOrderRepository sets the order repository for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderRepository(repo iorderrepo.IOrderRepository) option {
	return func(s *OrderService) {
		s.repo = repo
	}
}

// WithClock replaces time.Now.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *OrderService) {
		s.now = now
	}
}

// WithLocation sets the time zone that defines "today" on the dashboard.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithLocation(loc *time.Location) option {
	return func(s *OrderService) {
		s.location = loc
	}
}

// NewOrders returns PENDING orders created after since, newest first.
func (s *OrderService) NewOrders(ctx context.Context, since time.Time) ([]order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.NewOrders")
	defer span.End()

	return s.repo.NewOrders(ctx, since)
}

// ListOrders returns one page of orders and the number of matching orders.
func (s *OrderService) ListOrders(ctx context.Context, filter order.QueryOrdersModel) (order.Page, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.ListOrders")
	defer span.End()

	if filter.Limit <= 0 {
		filter.Limit = DefaultLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var page order.Page
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		orders, err := s.repo.Query(gctx, &filter)
		page.Orders = orders

		return err
	})
	g.Go(func() error {
		total, err := s.repo.Count(gctx, &filter)
		page.Total = total

		return err
	})
	if err := g.Wait(); err != nil {
		return order.Page{}, fmt.Errorf("failed to list orders: %w", err)
	}

	if page.Orders == nil {
		page.Orders = []order.Order{}
	}

	return page, nil
}

// GetOrder returns one order or apperr.ErrOrderNotFound.
func (s *OrderService) GetOrder(ctx context.Context, id string) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.GetOrder")
	defer span.End()

	return s.repo.GetByID(ctx, id)
}

// UpdateStatus changes the status of an order and returns the updated order.
// Empty notes leave the stored notes untouched.
func (s *OrderService) UpdateStatus(
	ctx context.Context,
	id string,
	status string,
	notes string,
) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.UpdateStatus")
	defer span.End()

	if status == "" {
		return order.Order{}, &apperr.ValidationError{Field: "status", Message: "Status is required"}
	}
	st, err := order.ParseStatus(status)
	if err != nil {
		return order.Order{}, &apperr.ValidationError{Field: "status", Message: "Invalid status"}
	}

	if err := s.repo.UpdateStatus(ctx, id, st, notes); err != nil {
		return order.Order{}, err
	}

	return s.repo.GetByID(ctx, id)
}

// DashboardStats collects the dashboard aggregates concurrently.
func (s *OrderService) DashboardStats(ctx context.Context) (order.Stats, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.DashboardStats")
	defer span.End()

	now := s.now().In(s.location)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)

	var stats order.Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.NewOrdersToday, err = s.repo.CountByStatus(gctx, order.StatusPending, &midnight)

		return err
	})
	g.Go(func() (err error) {
		stats.PendingOrders, err = s.repo.CountByStatus(gctx, order.StatusPending, nil)

		return err
	})
	g.Go(func() (err error) {
		stats.ProcessingOrders, err = s.repo.CountByStatus(gctx, order.StatusProcessing, nil)

		return err
	})
	g.Go(func() (err error) {
		stats.TotalRevenue, err = s.repo.SumTotals(gctx, revenueStatuses)

		return err
	})
	g.Go(func() (err error) {
		stats.RecentOrders, err = s.repo.Query(gctx, &order.QueryOrdersModel{Limit: recentLimit})

		return err
	})
	if err := g.Wait(); err != nil {
		return order.Stats{}, fmt.Errorf("failed to collect dashboard stats: %w", err)
	}

	if stats.RecentOrders == nil {
		stats.RecentOrders = []order.Order{}
	}

	return stats, nil
}
