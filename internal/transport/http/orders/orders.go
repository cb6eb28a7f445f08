package orders

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/corray333/backend-labs/adminlocal/internal/service/models/apperr"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/order"
	"github.com/corray333/backend-labs/adminlocal/internal/transport/http/respond"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"
)

type service interface {
	ListOrders(ctx context.Context, filter order.QueryOrdersModel) (order.Page, error)
	GetOrder(ctx context.Context, id string) (order.Order, error)
	UpdateStatus(ctx context.Context, id, status, notes string) (order.Order, error)
}

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}

type queryOrdersRequest struct {
	Status    string `schema:"status"`
	StartDate string `schema:"startDate"`
	EndDate   string `schema:"endDate"`
	Search    string `schema:"search"`
	Limit     int    `schema:"limit"`
	Offset    int    `schema:"offset"`
}

// ToModel validates the filters. Status ALL (or none) means any status.
func (q *queryOrdersRequest) ToModel() (order.QueryOrdersModel, error) {
	model := order.QueryOrdersModel{
		Search: strings.TrimSpace(q.Search),
		Limit:  q.Limit,
		Offset: q.Offset,
	}

	if q.Status != "" && !strings.EqualFold(q.Status, "ALL") {
		st, err := order.ParseStatus(q.Status)
		if err != nil {
			return model, &apperr.ValidationError{Field: "status", Message: "Invalid status"}
		}
		model.Status = &st
	}

	var err error
	if model.StartDate, err = parseDate(q.StartDate, false); err != nil {
		return model, &apperr.ValidationError{Field: "startDate", Message: "Invalid startDate"}
	}
	if model.EndDate, err = parseDate(q.EndDate, true); err != nil {
		return model, &apperr.ValidationError{Field: "endDate", Message: "Invalid endDate"}
	}
	if q.Limit < 0 || q.Offset < 0 {
		return model, &apperr.ValidationError{Message: "limit and offset must not be negative"}
	}

	return model, nil
}

// parseDate accepts RFC 3339 or a bare date. A bare end date covers the
// whole day.
func parseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}

	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}

	return &t, nil
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"  validate:"max=2000"`
}

// ListOrders handles GET /api/orders.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	query := &queryOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		respond.Error(w, r, &apperr.ValidationError{Message: "Invalid query parameters"}, "")

		return
	}

	filter, err := query.ToModel()
	if err != nil {
		respond.Error(w, r, err, "")

		return
	}

	page, err := service.ListOrders(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err, "Failed to fetch orders")

		return
	}

	respond.JSON(w, http.StatusOK, page)
}

// GetOrder handles GET /api/orders/{id}.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	o, err := service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err, "Failed to fetch order")

		return
	}

	respond.JSON(w, http.StatusOK, o)
}

// UpdateStatus handles PATCH /api/orders/{id}/status.
func UpdateStatus(w http.ResponseWriter, r *http.Request, service service) {
	req := updateStatusRequest{}
	if err := respond.Decode(r, &req, "Invalid request body"); err != nil {
		respond.Error(w, r, err, "")

		return
	}

	o, err := service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.Notes)
	if err != nil {
		respond.Error(w, r, err, "Failed to update order")

		return
	}

	respond.JSON(w, http.StatusOK, o)
}
