package printlog

import "time"

// Type is the kind of document a print attempt produced.
type Type string

const (
	TypeTestPage     Type = "TEST_PAGE"
	TypeAddressLabel Type = "ADDRESS_LABEL"
	TypeDeliverySlip Type = "DELIVERY_SLIP"
)

// Status is the outcome of a print attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Entry is one line of the print action log.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Type      Type      `json:"type"`
	OrderID   *string   `json:"orderId"`
	Status    Status    `json:"status"`
	Error     *string   `json:"error"`
}

// NewEntry builds an entry; empty orderID and nil err become JSON nulls.
func NewEntry(at time.Time, typ Type, orderID string, err error) Entry {
	e := Entry{
		Timestamp: at.UTC(),
		Type:      typ,
		Status:    StatusSuccess,
	}
	if orderID != "" {
		e.OrderID = &orderID
	}
	if err != nil {
		msg := err.Error()
		e.Status = StatusFailed
		e.Error = &msg
	}

	return e
}
