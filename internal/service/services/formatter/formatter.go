// Package formatter turns orders into printer-independent receipt documents.
// It performs no I/O.
package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/corray333/backend-labs/adminlocal/internal/service/models/address"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/apperr"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/order"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/receipt"
	"github.com/shopspring/decimal"
)

const (
	DocTestPage     = "test page"
	DocAddressLabel = "address label"
	DocDeliverySlip = "delivery slip"

	dateTimeLayout = "Jan 2, 2006 3:04 PM"
	dateLayout     = "Jan 2, 2006"

	// labels in the totals block are padded to this width before the amount
	totalsLabelWidth = 14
)

// Config holds the static content printed on documents.
type Config struct {
	StoreName    string
	AdminTitle   string
	SupportEmail string
	PrinterName  string
	PrinterType  string
	PaperSizeMM  int
	Location     *time.Location
}

// Formatter builds documents. It is safe for concurrent use.
type Formatter struct {
	cfg Config
}

// New creates a Formatter, filling unset fields with defaults.
func New(cfg Config) *Formatter {
	if cfg.StoreName == "" {
		cfg.StoreName = "KLOSET"
	}
	if cfg.AdminTitle == "" {
		cfg.AdminTitle = cfg.StoreName + " ADMIN"
	}
	if cfg.SupportEmail == "" {
		cfg.SupportEmail = "support@kloset.com"
	}
	if cfg.PaperSizeMM == 0 {
		cfg.PaperSizeMM = 80
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &Formatter{cfg: cfg}
}

// TestPage builds the printer self-test document stamped with now.
func (f *Formatter) TestPage(now time.Time) receipt.Document {
	b := receipt.NewBuilder(DocTestPage)
	b.AlignCenter().DoubleHeight().Bold(true).
		Line(f.cfg.AdminTitle).
		Bold(false).Normal().
		Line("Test Print").
		Separator().
		AlignLeft().
		Line("Date: " + now.In(f.cfg.Location).Format(dateTimeLayout)).
		Line("Printer: " + f.cfg.PrinterName).
		Line("Type: " + f.cfg.PrinterType).
		Line("Paper: " + strconv.Itoa(f.cfg.PaperSizeMM) + "mm").
		NewLine().
		AlignCenter().
		Line("Printer is working correctly!").
		NewLine().
		Cut()

	return b.Document()
}

// AddressLabel builds a shipping label. The order barcode carries a plain
// text fallback for printers without barcode support.
func (f *Formatter) AddressLabel(o order.Order) (receipt.Document, error) {
	addr, err := address.Parse(o.ShippingAddress)
	if err != nil {
		return receipt.Document{}, &apperr.PrintFormatError{Document: DocAddressLabel, Err: err}
	}

	b := receipt.NewBuilder(DocAddressLabel)
	b.AlignCenter().DoubleHeight().Bold(true).
		Line("SHIP TO:").
		Bold(false).Normal().
		NewLine()

	b.AlignLeft().DoubleHeight().
		Line(addr.FullName).
		Normal()
	writeAddressBody(b, addr)
	if addr.Phone != "" {
		b.Line("Phone: " + addr.Phone)
	}

	b.NewLine().
		Separator().
		AlignCenter().
		Line("Order #"+o.ShortID()).
		Line("Date: "+o.CreatedAt.In(f.cfg.Location).Format(dateLayout)).
		Barcode(o.BarcodeID(), receipt.SymbologyCode128, "ID: "+o.BarcodeID()).
		NewLine().
		Cut()

	return b.Document(), nil
}

// DeliverySlip builds the packing slip put into the parcel.
func (f *Formatter) DeliverySlip(o order.Order) (receipt.Document, error) {
	addr, err := address.Parse(o.ShippingAddress)
	if err != nil {
		return receipt.Document{}, &apperr.PrintFormatError{Document: DocDeliverySlip, Err: err}
	}

	b := receipt.NewBuilder(DocDeliverySlip)
	b.AlignCenter().Bold(true).DoubleHeight().
		Line(f.cfg.StoreName).
		Normal().Bold(false).
		Line("Thank you for your order!").
		Separator()

	b.AlignLeft().
		Line("Order ID: #" + o.ShortID()).
		Line("Date: " + o.CreatedAt.In(f.cfg.Location).Format(dateTimeLayout))
	if o.CustomerName != "" {
		b.Line("Customer: " + o.CustomerName)
	}
	if o.CustomerEmail != "" {
		b.Line("Email: " + o.CustomerEmail)
	}
	b.NewLine()

	b.Bold(true).Line("ITEMS ORDERED:").Bold(false).Separator()
	for _, item := range o.Items {
		b.Line(item.Name)
		if v := variantLine(item.Variant); v != "" {
			b.Line("  " + v)
		}
		b.Line(fmt.Sprintf("  Qty: %d x $%s = $%s", item.Quantity, money(item.Price), money(item.LineTotal())))
		b.Separator()
	}
	b.NewLine()

	b.Line(totalLine("Subtotal:", o.Subtotal)).
		Line(totalLine("Shipping:", o.ShippingCost))
	if o.Discount.IsPositive() {
		b.Line(padRight("Discount:", totalsLabelWidth-1) + "-$" + money(o.Discount))
	}
	b.Line(totalLine("Tax:", o.Tax)).
		Bold(true).DoubleHeight().
		Line(totalLine("TOTAL:", o.Total)).
		Normal().Bold(false).
		NewLine()

	b.Separator().
		Bold(true).Line("DELIVER TO:").Bold(false).
		Line(addr.FullName)
	writeAddressBody(b, addr)
	b.NewLine()

	b.AlignCenter().
		Line("Questions? Email: " + f.cfg.SupportEmail).
		NewLine().
		Cut()

	return b.Document(), nil
}

func writeAddressBody(b *receipt.Builder, addr address.Address) {
	b.Line(addr.AddressLine1)
	if addr.AddressLine2 != "" {
		b.Line(addr.AddressLine2)
	}
	b.Line(addr.Locality()).
		Line(addr.Country)
}

func variantLine(v *order.Variant) string {
	if v == nil {
		return ""
	}

	parts := make([]string, 0, 2)
	if v.Size != "" {
		parts = append(parts, "Size: "+v.Size)
	}
	if v.Color != "" {
		parts = append(parts, "Color: "+v.Color)
	}

	return strings.Join(parts, " | ")
}

func totalLine(label string, amount decimal.Decimal) string {
	return padRight(label, totalsLabelWidth) + "$" + money(amount)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s + " "
	}

	return s + strings.Repeat(" ", width-len(s))
}
