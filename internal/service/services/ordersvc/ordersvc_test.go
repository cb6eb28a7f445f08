package ordersvc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/corray333/backend-labs/adminlocal/internal/service/models/apperr"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu        sync.Mutex
	orders    map[string]order.Order
	queryErr  error
	lastQuery order.QueryOrdersModel
	sinces    []*time.Time
	statuses  []order.Status
}

func newFakeRepo(orders ...order.Order) *fakeRepo {
	r := &fakeRepo{orders: map[string]order.Order{}}
	for _, o := range orders {
		r.orders[o.ID] = o
	}

	return r
}

func (r *fakeRepo) NewOrders(context.Context, time.Time) ([]order.Order, error) {
	return nil, nil
}

func (r *fakeRepo) Query(_ context.Context, f *order.QueryOrdersModel) ([]order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastQuery = *f
	if r.queryErr != nil {
		return nil, r.queryErr
	}

	var out []order.Order
	for _, o := range r.orders {
		out = append(out, o)
	}

	return out, nil
}

func (r *fakeRepo) Count(context.Context, *order.QueryOrdersModel) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.orders), nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return order.Order{}, apperr.ErrOrderNotFound
	}

	return o, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id string, status order.Status, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return apperr.ErrOrderNotFound
	}
	o.Status = status
	if notes != "" {
		o.Notes = notes
	}
	r.orders[id] = o

	return nil
}

func (r *fakeRepo) CountByStatus(_ context.Context, status order.Status, since *time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinces = append(r.sinces, since)

	n := 0
	for _, o := range r.orders {
		if o.Status == status && (since == nil || !o.CreatedAt.Before(*since)) {
			n++
		}
	}

	return n, nil
}

func (r *fakeRepo) SumTotals(_ context.Context, statuses []order.Status) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = statuses

	sum := decimal.Zero
	for _, o := range r.orders {
		for _, s := range statuses {
			if o.Status == s {
				sum = sum.Add(o.Total)
			}
		}
	}

	return sum, nil
}

func TestListOrders_DefaultsAndTotal(t *testing.T) {
	repo := newFakeRepo(order.Order{ID: "a"}, order.Order{ID: "b"})
	svc := MustNewOrderService(WithOrderRepository(repo))

	page, err := svc.ListOrders(context.Background(), order.QueryOrdersModel{Offset: -3})
	require.NoError(t, err)

	assert.Len(t, page.Orders, 2)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, DefaultLimit, repo.lastQuery.Limit)
	assert.Equal(t, 0, repo.lastQuery.Offset)
}

func TestListOrders_Error(t *testing.T) {
	repo := newFakeRepo()
	repo.queryErr = errors.New("db down")
	svc := MustNewOrderService(WithOrderRepository(repo))

	_, err := svc.ListOrders(context.Background(), order.QueryOrdersModel{})
	assert.ErrorContains(t, err, "db down")
}

func TestListOrders_EmptyIsNotNil(t *testing.T) {
	svc := MustNewOrderService(WithOrderRepository(newFakeRepo()))

	page, err := svc.ListOrders(context.Background(), order.QueryOrdersModel{})
	require.NoError(t, err)
	assert.NotNil(t, page.Orders)
}

func TestUpdateStatus(t *testing.T) {
	repo := newFakeRepo(order.Order{ID: "a", Status: order.StatusPending, Notes: "gift"})
	svc := MustNewOrderService(WithOrderRepository(repo))

	updated, err := svc.UpdateStatus(context.Background(), "a", "SHIPPED", "")
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, updated.Status)
	assert.Equal(t, "gift", updated.Notes)

	updated, err = svc.UpdateStatus(context.Background(), "a", "DELIVERED", "left at door")
	require.NoError(t, err)
	assert.Equal(t, "left at door", updated.Notes)
}

func TestUpdateStatus_Errors(t *testing.T) {
	svc := MustNewOrderService(WithOrderRepository(newFakeRepo(order.Order{ID: "a"})))

	tests := []struct {
		name   string
		id     string
		status string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "missing status",
			id:     "a",
			status: "",
			check: func(t *testing.T, err error) {
				var v *apperr.ValidationError
				require.ErrorAs(t, err, &v)
				assert.Equal(t, "Status is required", v.Message)
			},
		},
		{
			name:   "unknown status",
			id:     "a",
			status: "LOST",
			check: func(t *testing.T, err error) {
				var v *apperr.ValidationError
				require.ErrorAs(t, err, &v)
				assert.Equal(t, "Invalid status", v.Message)
			},
		},
		{
			name:   "unknown order",
			id:     "zzz",
			status: "SHIPPED",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, apperr.ErrOrderNotFound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateStatus(context.Background(), tt.id, tt.status, "")
			tt.check(t, err)
		})
	}
}

func TestDashboardStats(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2026, 6, 10, 1, 30, 0, 0, loc)
	midnight := time.Date(2026, 6, 10, 0, 0, 0, 0, loc)

	repo := newFakeRepo(
		order.Order{ID: "today", Status: order.StatusPending, CreatedAt: midnight.Add(time.Hour), Total: decimal.RequireFromString("5")},
		order.Order{ID: "yesterday", Status: order.StatusPending, CreatedAt: midnight.Add(-time.Minute), Total: decimal.RequireFromString("7")},
		order.Order{ID: "proc", Status: order.StatusProcessing, Total: decimal.RequireFromString("10.25")},
		order.Order{ID: "ship", Status: order.StatusShipped, Total: decimal.RequireFromString("4.75")},
		order.Order{ID: "refund", Status: order.StatusRefunded, Total: decimal.RequireFromString("100")},
	)
	svc := MustNewOrderService(
		WithOrderRepository(repo),
		WithClock(func() time.Time { return now.UTC() }),
		WithLocation(loc),
	)

	stats, err := svc.DashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.NewOrdersToday)
	assert.Equal(t, 2, stats.PendingOrders)
	assert.Equal(t, 1, stats.ProcessingOrders)
	assert.True(t, decimal.RequireFromString("15").Equal(stats.TotalRevenue))
	assert.Len(t, stats.RecentOrders, 5)
	assert.Equal(t, recentLimit, repo.lastQuery.Limit)
	assert.ElementsMatch(t, revenueStatuses, repo.statuses)
}
