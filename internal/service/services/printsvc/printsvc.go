package printsvc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/adminlocal/internal/dal/interfaces/iprintlogrepo"
	"github.com/corray333/backend-labs/adminlocal/internal/dal/printer"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/apperr"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/order"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/printlog"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/receipt"
	"github.com/corray333/backend-labs/adminlocal/internal/service/services/formatter"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type transport interface {
	Info() printer.Info
	Probe(ctx context.Context) error
	IsConnected(ctx context.Context) bool
	Execute(ctx context.Context, doc receipt.Document) error
}

// Status is the printer state shown on the dashboard.
type Status struct {
	Connected bool
	Name      string
	Type      string
	PaperSize string
	Error     string
}

// PrintService runs the print paths and records every attempt.
type PrintService struct {
	transport transport
	formatter *formatter.Formatter
	printLogs []iprintlogrepo.IPrintLogRepository
	now       func() time.Time
}

// option is a function that configures the PrintService.
type option func(*PrintService)

// MustNewPrintService creates a new PrintService.
func MustNewPrintService(opts ...option) *PrintService {
	s := &PrintService{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if s.transport == nil {
		panic("printsvc: transport is required")
	}
	if s.formatter == nil {
		s.formatter = formatter.New(formatter.Config{})
	}

	return s
}

// WithTransport sets the printer transport.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithTransport(t transport) option {
	return func(s *PrintService) {
		s.transport = t
	}
}

// WithFormatter sets the document formatter.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithFormatter(f *formatter.Formatter) option {
	return func(s *PrintService) {
		s.formatter = f
	}
}

// WithPrintLog adds print log sinks. Every sink receives every entry.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPrintLog(repos ...iprintlogrepo.IPrintLogRepository) option {
	return func(s *PrintService) {
		s.printLogs = append(s.printLogs, repos...)
	}
}

// WithClock replaces time.Now.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *PrintService) {
		s.now = now
	}
}

// PrinterStatus probes the printer.
func (s *PrintService) PrinterStatus(ctx context.Context) Status {
	info := s.transport.Info()
	st := Status{Name: info.Name, Type: info.Type, PaperSize: info.PaperSize}

	if err := s.transport.Probe(ctx); err != nil {
		slog.Warn("Printer probe failed", "printer", info.Name, "error", err)
		st.Error = err.Error()

		return st
	}
	st.Connected = true

	return st
}

// PrintTestPage prints the self-test page.
func (s *PrintService) PrintTestPage(ctx context.Context) error {
	return s.run(ctx, printlog.TypeTestPage, "", func() (receipt.Document, error) {
		return s.formatter.TestPage(s.now()), nil
	})
}

// PrintAddressLabel prints the shipping label of o.
func (s *PrintService) PrintAddressLabel(ctx context.Context, o order.Order) error {
	return s.run(ctx, printlog.TypeAddressLabel, o.ID, func() (receipt.Document, error) {
		return s.formatter.AddressLabel(o)
	})
}

// PrintDeliverySlip prints the packing slip of o.
func (s *PrintService) PrintDeliverySlip(ctx context.Context, o order.Order) error {
	return s.run(ctx, printlog.TypeDeliverySlip, o.ID, func() (receipt.Document, error) {
		return s.formatter.DeliverySlip(o)
	})
}

func (s *PrintService) run(
	ctx context.Context,
	typ printlog.Type,
	orderID string,
	build func() (receipt.Document, error),
) error {
	ctx, span := otel.Tracer("service").Start(ctx, "PrintService.Print")
	defer span.End()
	span.SetAttributes(
		attribute.String("print.type", string(typ)),
		attribute.String("order.id", orderID),
	)

	err := s.print(ctx, build)
	s.record(ctx, printlog.NewEntry(s.now(), typ, orderID, err))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("Print failed", "type", typ, "order_id", orderID, "error", err)

		return err
	}

	slog.Info("Printed", "type", typ, "order_id", orderID)

	return nil
}

func (s *PrintService) print(ctx context.Context, build func() (receipt.Document, error)) error {
	if !s.transport.IsConnected(ctx) {
		return apperr.ErrPrinterNotConnected
	}

	doc, err := build()
	if err != nil {
		return err
	}

	err = s.transport.Execute(ctx, doc)

	var unsupported *apperr.UnsupportedDirectiveError
	if errors.As(err, &unsupported) && doc.HasBarcode() {
		slog.Warn("Printer rejected a directive, printing text fallback",
			"document", doc.Name,
			"kind", unsupported.Kind,
			"reason", unsupported.Reason)

		return s.transport.Execute(ctx, doc.WithoutBarcodes())
	}

	return err
}

// record never fails the print path; sink errors are only logged.
func (s *PrintService) record(ctx context.Context, entry printlog.Entry) {
	for _, repo := range s.printLogs {
		if err := repo.Append(ctx, entry); err != nil {
			slog.Error("Failed to record print log entry", "type", entry.Type, "error", err)
		}
	}
}
