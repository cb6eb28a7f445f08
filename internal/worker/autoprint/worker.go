package autoprint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/corray333/backend-labs/adminlocal/internal/service/models/order"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/atomic"
)

// ErrCycleInFlight is returned by RunOnce while another cycle is running.
var ErrCycleInFlight = errors.New("poll cycle already in flight")

type orderSource interface {
	NewOrders(ctx context.Context, since time.Time) ([]order.Order, error)
}

type slipPrinter interface {
	PrintDeliverySlip(ctx context.Context, o order.Order) error
}

type orderNotifier interface {
	NotifyNewOrder(ctx context.Context, o order.Order) error
}

// Worker polls the storefront for new orders, announces them and prints a
// delivery slip for each one.
type Worker struct {
	orders       orderSource
	printer      slipPrinter
	notifier     orderNotifier
	pollInterval time.Duration
	now          func() time.Time

	// watermark is the creation time after which orders count as new.
	watermark *atomic.Time
	inFlight  *atomic.Bool

	stopCh   chan struct{}
	stopOnce sync.Once
	// done is closed when Start returns.
	done chan struct{}
}

type option func(*Worker)

// WithPollInterval overrides autoprint.poll_interval_seconds.
func WithPollInterval(d time.Duration) option {
	return func(w *Worker) {
		w.pollInterval = d
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) option {
	return func(w *Worker) {
		w.now = now
	}
}

// WithNotifier enables desktop notifications for new orders.
func WithNotifier(n orderNotifier) option {
	return func(w *Worker) {
		w.notifier = n
	}
}

// NewWorker creates a new auto-print worker. The watermark starts at the
// current time, so orders placed before startup are not printed.
func NewWorker(orders orderSource, printer slipPrinter, opts ...option) *Worker {
	pollIntervalSeconds := viper.GetInt("autoprint.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 30
	}

	w := &Worker{
		orders:       orders,
		printer:      printer,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		now:          time.Now,
		inFlight:     atomic.NewBool(false),
		stopCh:       make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.watermark = atomic.NewTime(w.now())

	return w
}

// Start runs a cycle on every tick until ctx is done or Stop is called. A
// cycle already running when Stop is called is finished first. Start must be
// called at most once.
func (w *Worker) Start(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Auto-print worker started", "poll_interval", w.pollInterval, "watermark", w.Watermark())

	for {
		select {
		case <-ctx.Done():
			slog.Info("Auto-print worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Auto-print worker stopped")

			return
		case <-ticker.C:
			if w.stopped() {
				continue
			}
			if err := w.RunOnce(ctx); errors.Is(err, ErrCycleInFlight) {
				slog.Debug("Skipping tick, previous cycle still running")
			}
		}
	}
}

// Stop stops the worker. It is safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

// stopped reports whether Stop was called. select picks ready cases at
// random, so a tick can win over a pending stop.
func (w *Worker) stopped() bool {
	select {
	case <-w.stopCh:
		return true
	default:
		return false
	}
}

// Done is closed once Start has returned, i.e. after the last cycle finished.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Watermark returns the current watermark.
func (w *Worker) Watermark() time.Time {
	return w.watermark.Load()
}

// RunOnce runs a single cycle. It returns ErrCycleInFlight without doing
// anything if a cycle is already running, and the query error if the order
// source failed.
func (w *Worker) RunOnce(ctx context.Context) error {
	if !w.inFlight.CompareAndSwap(false, true) {
		return ErrCycleInFlight
	}
	defer w.inFlight.Store(false)

	return w.processOrders(ctx)
}

func (w *Worker) processOrders(ctx context.Context) error {
	ctx, span := otel.Tracer("worker").Start(ctx, "AutoPrint.processOrders")
	defer span.End()

	since := w.watermark.Load()
	orders, err := w.orders.NewOrders(ctx, since)
	if err != nil {
		span.RecordError(err)
		slog.Error("Failed to check for new orders", "since", since, "error", err)

		return fmt.Errorf("failed to check for new orders: %w", err)
	}
	span.SetAttributes(attribute.Int("orders.count", len(orders)))

	if len(orders) == 0 {
		return nil
	}

	slog.Info("New orders found", "count", len(orders))

	for _, o := range orders {
		if w.notifier != nil {
			if err := w.notifier.NotifyNewOrder(ctx, o); err != nil {
				slog.Warn("Failed to show new order notification", "order_id", o.ID, "error", err)
			}
		}

		if err := w.printer.PrintDeliverySlip(ctx, o); err != nil {
			slog.Error("Failed to auto-print delivery slip", "order_id", o.ID, "error", err)

			continue
		}
		slog.Info("Auto-printed delivery slip", "order_id", o.ID)
	}

	w.advance(w.now())

	return nil
}

// advance moves the watermark forward, never back.
func (w *Worker) advance(to time.Time) {
	if to.After(w.watermark.Load()) {
		w.watermark.Store(to)
	}
}
