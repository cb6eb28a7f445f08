package order

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a storefront order as seen by the admin server. It is read-only
// except for Status and Notes.
type Order struct {
	ID              string          `json:"id"`
	Status          Status          `json:"status"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	Notes           string          `json:"notes,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingCost    decimal.Decimal `json:"shippingCost"`
	Discount        decimal.Decimal `json:"discount"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress json.RawMessage `json:"shippingAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	Items           []Item          `json:"items"`
}

// Item is a single line of an order.
type Item struct {
	ID       string          `json:"id"`
	OrderID  string          `json:"orderId"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Variant  *Variant        `json:"variant,omitempty"`
}

// Variant is the size/color selection of an item.
type Variant struct {
	Size  string `json:"size"`
	Color string `json:"color"`
}

// LineTotal returns quantity times unit price.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ShortID returns the last 8 characters of the id, uppercased.
func (o Order) ShortID() string {
	return strings.ToUpper(tail(o.ID, 8))
}

// BarcodeID returns the last 12 characters of the id.
func (o Order) BarcodeID() string {
	return tail(o.ID, 12)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[len(s)-n:]
}
