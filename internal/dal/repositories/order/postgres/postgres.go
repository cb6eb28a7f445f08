package postgresrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/apperr"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/order"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	orderTable     = `"Order"`
	orderItemTable = `"OrderItem"`
	variantTable   = `"Variant"`
)

var orderColumns = []string{
	`"id"`,
	`"status"`,
	`"guestName"`,
	`"guestEmail"`,
	`"notes"`,
	`"subtotal"`,
	`"shippingCost"`,
	`"discount"`,
	`"tax"`,
	`"total"`,
	`"shippingAddress"`,
	`"createdAt"`,
	`"updatedAt"`,
}

// OrderDal represents order data access layer model
type OrderDal struct {
	ID              string          `db:"id"`
	Status          string          `db:"status"`
	GuestName       sql.NullString  `db:"guestName"`
	GuestEmail      sql.NullString  `db:"guestEmail"`
	Notes           sql.NullString  `db:"notes"`
	Subtotal        decimal.Decimal `db:"subtotal"`
	ShippingCost    decimal.Decimal `db:"shippingCost"`
	Discount        decimal.Decimal `db:"discount"`
	Tax             decimal.Decimal `db:"tax"`
	Total           decimal.Decimal `db:"total"`
	ShippingAddress []byte          `db:"shippingAddress"`
	CreatedAt       time.Time       `db:"createdAt"`
	UpdatedAt       time.Time       `db:"updatedAt"`
}

// ToModel converts OrderDal to service layer Order model
func (o *OrderDal) ToModel() (order.Order, error) {
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return order.Order{}, err
	}

	return order.Order{
		ID:              o.ID,
		Status:          status,
		CustomerName:    o.GuestName.String,
		CustomerEmail:   o.GuestEmail.String,
		Notes:           o.Notes.String,
		Subtotal:        o.Subtotal,
		ShippingCost:    o.ShippingCost,
		Discount:        o.Discount,
		Tax:             o.Tax,
		Total:           o.Total,
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Items:           []order.Item{},
	}, nil
}

// OrderItemDal is one item row joined with its variant.
type OrderItemDal struct {
	ID           string          `db:"id"`
	OrderID      string          `db:"orderId"`
	Name         string          `db:"name"`
	Quantity     int             `db:"quantity"`
	Price        decimal.Decimal `db:"price"`
	VariantID    sql.NullString  `db:"variantId"`
	VariantSize  sql.NullString  `db:"variantSize"`
	VariantColor sql.NullString  `db:"variantColor"`
}

func (i *OrderItemDal) ToModel() order.Item {
	item := order.Item{
		ID:       i.ID,
		OrderID:  i.OrderID,
		Name:     i.Name,
		Quantity: i.Quantity,
		Price:    i.Price,
	}
	if i.VariantID.Valid {
		item.Variant = &order.Variant{Size: i.VariantSize.String, Color: i.VariantColor.String}
	}

	return item
}

type PostgresOrderRepository struct {
	conn sqlx.ExtContext
}

func NewPostgresOrderRepository(conn sqlx.ExtContext) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
	}
}

// NewOrders returns PENDING orders created after since, newest first.
func (r *PostgresOrderRepository) NewOrders(ctx context.Context, since time.Time) ([]order.Order, error) {
	query := sq.Select(orderColumns...).
		From(orderTable).
		Where(sq.Gt{`"createdAt"`: since}).
		Where(sq.Eq{`"status"`: order.StatusPending.String()}).
		OrderBy(`"createdAt" DESC`)

	return r.selectOrders(ctx, query)
}

// Query retrieves orders based on filter criteria
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	query := sq.Select(orderColumns...).
		From(orderTable).
		Where(filterCondition(filter)).
		OrderBy(`"createdAt" DESC`)

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	return r.selectOrders(ctx, query)
}

// Count returns the number of orders matching filter, ignoring pagination.
func (r *PostgresOrderRepository) Count(ctx context.Context, filter *order.QueryOrdersModel) (int, error) {
	query := sq.Select("COUNT(*)").
		From(orderTable).
		Where(filterCondition(filter))

	return r.count(ctx, query)
}

// GetByID returns one order with its items.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (order.Order, error) {
	query := sq.Select(orderColumns...).
		From(orderTable).
		Where(sq.Eq{`"id"`: id})

	orders, err := r.selectOrders(ctx, query)
	if err != nil {
		return order.Order{}, err
	}
	if len(orders) == 0 {
		return order.Order{}, apperr.ErrOrderNotFound
	}

	return orders[0], nil
}

// UpdateStatus sets the status and, when notes is not empty, the notes.
func (r *PostgresOrderRepository) UpdateStatus(
	ctx context.Context,
	id string,
	status order.Status,
	notes string,
) error {
	query := sq.Update(orderTable).
		Set(`"status"`, status.String()).
		Set(`"updatedAt"`, sq.Expr("now()")).
		Where(sq.Eq{`"id"`: id}).
		PlaceholderFormat(sq.Dollar)
	if notes != "" {
		query = query.Set(`"notes"`, notes)
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return apperr.ErrOrderNotFound
	}

	return nil
}

// CountByStatus counts orders in status, optionally created at or after since.
func (r *PostgresOrderRepository) CountByStatus(
	ctx context.Context,
	status order.Status,
	since *time.Time,
) (int, error) {
	query := sq.Select("COUNT(*)").
		From(orderTable).
		Where(sq.Eq{`"status"`: status.String()})
	if since != nil {
		query = query.Where(sq.GtOrEq{`"createdAt"`: *since})
	}

	return r.count(ctx, query)
}

// SumTotals sums the total of all orders in one of statuses.
func (r *PostgresOrderRepository) SumTotals(ctx context.Context, statuses []order.Status) (decimal.Decimal, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = s.String()
	}

	sqlStr, args, err := sq.Select(`COALESCE(SUM("total"), 0)`).
		From(orderTable).
		Where(`"status" = ANY(?)`, pq.Array(names)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build sum query: %w", err)
	}

	var sum decimal.Decimal
	if err := sqlx.GetContext(ctx, r.conn, &sum, sqlStr, args...); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum order totals: %w", err)
	}

	return sum, nil
}

func (r *PostgresOrderRepository) selectOrders(ctx context.Context, query sq.SelectBuilder) ([]order.Order, error) {
	sqlStr, args, err := query.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dals []OrderDal
	if err := sqlx.SelectContext(ctx, r.conn, &dals, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	orders := make([]order.Order, 0, len(dals))
	ids := make([]string, 0, len(dals))
	for i := range dals {
		model, err := dals[i].ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		orders = append(orders, model)
		ids = append(ids, model.ID)
	}

	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.itemsByOrder(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if its, ok := items[orders[i].ID]; ok {
			orders[i].Items = its
		}
	}

	return orders, nil
}

func (r *PostgresOrderRepository) itemsByOrder(ctx context.Context, orderIDs []string) (map[string][]order.Item, error) {
	sqlStr, args, err := itemsQuery(orderIDs).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build items query: %w", err)
	}

	var dals []OrderItemDal
	if err := sqlx.SelectContext(ctx, r.conn, &dals, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}

	out := make(map[string][]order.Item, len(orderIDs))
	for i := range dals {
		out[dals[i].OrderID] = append(out[dals[i].OrderID], dals[i].ToModel())
	}

	return out, nil
}

func (r *PostgresOrderRepository) count(ctx context.Context, query sq.SelectBuilder) (int, error) {
	sqlStr, args, err := query.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var n int
	if err := sqlx.GetContext(ctx, r.conn, &n, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}

		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return n, nil
}

func itemsQuery(orderIDs []string) sq.SelectBuilder {
	return sq.Select(
		`i."id"`,
		`i."orderId"`,
		`i."name"`,
		`i."quantity"`,
		`i."price"`,
		`i."variantId"`,
		`v."size" AS "variantSize"`,
		`v."color" AS "variantColor"`,
	).
		From(orderItemTable+" i").
		LeftJoin(variantTable+` v ON v."id" = i."variantId"`).
		Where(`i."orderId" = ANY(?)`, pq.Array(orderIDs)).
		OrderBy(`i."id"`).
		PlaceholderFormat(sq.Dollar)
}

// filterCondition translates the admin list filters. Search matches id,
// customer name and email, case-insensitively.
func filterCondition(filter *order.QueryOrdersModel) sq.And {
	cond := sq.And{}
	if filter == nil {
		return cond
	}

	if filter.Status != nil {
		cond = append(cond, sq.Eq{`"status"`: filter.Status.String()})
	}
	if filter.StartDate != nil {
		cond = append(cond, sq.GtOrEq{`"createdAt"`: *filter.StartDate})
	}
	if filter.EndDate != nil {
		cond = append(cond, sq.LtOrEq{`"createdAt"`: *filter.EndDate})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		cond = append(cond, sq.Or{
			sq.ILike{`"id"`: pattern},
			sq.ILike{`"guestName"`: pattern},
			sq.ILike{`"guestEmail"`: pattern},
		})
	}

	return cond
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
