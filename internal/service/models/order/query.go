package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	Status    *Status    `json:"status,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Search    string     `json:"search,omitempty"`
	Limit     int        `json:"limit,omitempty"`
	Offset    int        `json:"offset,omitempty"`
}

// Page is a filtered slice of orders with the unpaginated total.
type Page struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
}

// Stats are the aggregates shown on the admin dashboard.
type Stats struct {
	NewOrdersToday   int             `json:"newOrdersToday"`
	PendingOrders    int             `json:"pendingOrders"`
	ProcessingOrders int             `json:"processingOrders"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	RecentOrders     []Order         `json:"recentOrders"`
}
