// Package printer owns the connection to a receipt printer. A connection is
// opened for every call and closed before it returns.
package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/corray333/backend-labs/adminlocal/internal/dal/printer/escpos"
	"github.com/corray333/backend-labs/adminlocal/internal/dal/printer/star"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/receipt"
)

// Family is the command language spoken by the printer.
type Family string

const (
	FamilyEpson Family = "EPSON"
	FamilyStar  Family = "STAR"
)

const defaultTimeout = 5 * time.Second

var ErrInvalidInterface = errors.New("invalid printer interface")

// ParseFamily maps PRINTER_TYPE onto a family. Anything but STAR is
// treated as EPSON.
func ParseFamily(s string) Family {
	if strings.EqualFold(strings.TrimSpace(s), string(FamilyStar)) {
		return FamilyStar
	}

	return FamilyEpson
}

// Config describes one printer.
type Config struct {
	Name string
	// Interface is tcp://host:port or file:///path/to/device.
	Interface      string
	Family         Family
	PaperSizeMM    int
	Timeout        time.Duration
	BarcodeEnabled bool
}

// Info is the printer description reported by status probes.
type Info struct {
	Name      string
	Type      string
	PaperSize string
}

type encoder interface {
	Encode(doc receipt.Document) ([]byte, error)
}

type opener func(ctx context.Context) (io.WriteCloser, error)

// Transport prints documents on a single configured device.
type Transport struct {
	cfg     Config
	encoder encoder
	open    opener
}

// NewTransport validates the interface address and selects the encoder.
func NewTransport(cfg Config) (*Transport, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.PaperSizeMM <= 0 {
		cfg.PaperSizeMM = 80
	}
	if cfg.Family == "" {
		cfg.Family = FamilyEpson
	}

	open, err := newOpener(cfg.Interface, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Transport{
		cfg:     cfg,
		encoder: newEncoder(cfg),
		open:    open,
	}, nil
}

// Columns returns the characters per line for a paper width.
func Columns(paperSizeMM int) int {
	if paperSizeMM <= 58 {
		return 32
	}

	return 48
}

func newEncoder(cfg Config) encoder {
	columns := Columns(cfg.PaperSizeMM)
	if cfg.Family == FamilyStar {
		return star.New(star.Options{Columns: columns, BarcodeEnabled: cfg.BarcodeEnabled})
	}

	return escpos.New(escpos.Options{Columns: columns, BarcodeEnabled: cfg.BarcodeEnabled})
}

// Info describes the configured printer.
func (t *Transport) Info() Info {
	return Info{
		Name:      t.cfg.Name,
		Type:      string(t.cfg.Family),
		PaperSize: fmt.Sprintf("%dmm", t.cfg.PaperSizeMM),
	}
}

// IsConnected opens and closes a connection within the configured timeout.
func (t *Transport) IsConnected(ctx context.Context) bool {
	return t.Probe(ctx) == nil
}

// Probe is IsConnected with the failure reason.
func (t *Transport) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	conn, err := t.openBounded(ctx)
	if err != nil {
		return err
	}

	return conn.Close()
}

// Execute encodes doc and sends it. An unsupported directive is reported as
// *apperr.UnsupportedDirectiveError before the device is touched.
func (t *Transport) Execute(ctx context.Context, doc receipt.Document) error {
	payload, err := t.encoder.Encode(doc)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	conn, err := t.openBounded(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Warn("Failed to close printer connection", "printer", t.cfg.Name, "error", err)
		}
	}()

	if dl, ok := conn.(interface{ SetWriteDeadline(time.Time) error }); ok {
		if deadline, ok := ctx.Deadline(); ok {
			_ = dl.SetWriteDeadline(deadline)
		}
	}

	if err := bounded(ctx, func() error {
		_, err := conn.Write(payload)

		return err
	}); err != nil {
		return fmt.Errorf("failed to send %s to printer: %w", doc.Name, err)
	}

	return nil
}

func (t *Transport) openBounded(ctx context.Context) (io.WriteCloser, error) {
	type result struct {
		conn io.WriteCloser
		err  error
	}

	ch := make(chan result, 1)
	go func() {
		conn, err := t.open(ctx)
		ch <- result{conn: conn, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("failed to open printer %q: %w", t.cfg.Name, r.err)
		}

		return r.conn, nil
	case <-ctx.Done():
		// release a connection that shows up after we stopped waiting
		go func() {
			if r := <-ch; r.conn != nil {
				_ = r.conn.Close()
			}
		}()

		return nil, fmt.Errorf("failed to open printer %q: %w", t.cfg.Name, ctx.Err())
	}
}

// bounded runs fn and gives up when ctx ends. A call that outlives ctx
// keeps running in the background until the device returns.
func bounded(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func newOpener(iface string, timeout time.Duration) (opener, error) {
	u, err := url.Parse(iface)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInterface, err)
	}

	switch u.Scheme {
	case "tcp":
		if u.Host == "" {
			return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidInterface, iface)
		}
		addr := u.Host
		if u.Port() == "" {
			addr = net.JoinHostPort(u.Hostname(), "9100")
		}

		return func(ctx context.Context) (io.WriteCloser, error) {
			d := net.Dialer{Timeout: timeout}

			return d.DialContext(ctx, "tcp", addr)
		}, nil
	case "file":
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		if path == "" {
			return nil, fmt.Errorf("%w: missing path in %q", ErrInvalidInterface, iface)
		}

		return func(context.Context) (io.WriteCloser, error) {
			return os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
		}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidInterface, u.Scheme)
	}
}
