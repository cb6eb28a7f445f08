package printer

import (
	"context"
	"errors"
	"net/http"

	"github.com/corray333/backend-labs/adminlocal/internal/service/models/apperr"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/order"
	"github.com/corray333/backend-labs/adminlocal/internal/service/services/printsvc"
	"github.com/corray333/backend-labs/adminlocal/internal/transport/http/respond"
	"github.com/go-chi/chi/v5"
)

type service interface {
	PrinterStatus(ctx context.Context) printsvc.Status
	PrintTestPage(ctx context.Context) error
	PrintAddressLabel(ctx context.Context, o order.Order) error
	PrintDeliverySlip(ctx context.Context, o order.Order) error
}

type orderService interface {
	GetOrder(ctx context.Context, id string) (order.Order, error)
}

type statusResponse struct {
	Connected bool   `json:"connected"`
	Name      string `json:"name,omitempty"`
	Type      string `json:"type,omitempty"`
	PaperSize string `json:"paperSize,omitempty"`
	Error     string `json:"error,omitempty"`
}

type printResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Status handles GET /api/printer/status.
func Status(w http.ResponseWriter, r *http.Request, service service) {
	st := service.PrinterStatus(r.Context())
	if !st.Connected {
		respond.JSON(w, http.StatusOK, statusResponse{Connected: false, Error: st.Error})

		return
	}

	respond.JSON(w, http.StatusOK, statusResponse{
		Connected: true,
		Name:      st.Name,
		Type:      st.Type,
		PaperSize: st.PaperSize,
	})
}

// TestPage handles POST /api/printer/test.
func TestPage(w http.ResponseWriter, r *http.Request, service service) {
	if err := service.PrintTestPage(r.Context()); err != nil {
		printFailed(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, printResponse{Success: true, Message: "Test page printed"})
}

// AddressLabel handles POST /api/printer/address-label/{orderId}.
func AddressLabel(w http.ResponseWriter, r *http.Request, service service, orders orderService) {
	o, ok := loadOrder(w, r, orders)
	if !ok {
		return
	}

	if err := service.PrintAddressLabel(r.Context(), o); err != nil {
		printFailed(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, printResponse{Success: true, Message: "Address label printed"})
}

// DeliverySlip handles POST /api/printer/delivery-slip/{orderId}.
func DeliverySlip(w http.ResponseWriter, r *http.Request, service service, orders orderService) {
	o, ok := loadOrder(w, r, orders)
	if !ok {
		return
	}

	if err := service.PrintDeliverySlip(r.Context(), o); err != nil {
		printFailed(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, printResponse{Success: true, Message: "Delivery slip printed"})
}

func loadOrder(w http.ResponseWriter, r *http.Request, orders orderService) (order.Order, bool) {
	o, err := orders.GetOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		if errors.Is(err, apperr.ErrOrderNotFound) {
			respond.Error(w, r, err, "")
		} else {
			printFailed(w, err)
		}

		return order.Order{}, false
	}

	return o, true
}

// printFailed reports the failure reason to the dashboard as is.
func printFailed(w http.ResponseWriter, err error) {
	respond.JSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
