// Package notifier shows desktop notifications for incoming orders.
package notifier

import (
	"context"
	"fmt"

	"github.com/corray333/backend-labs/adminlocal/internal/service/models/order"
	"github.com/gen2brain/beeep"
)

const Title = "New Order Received!"

type notifyFunc func(title, message string, icon any) error

// Desktop raises a system notification through the OS notification daemon.
type Desktop struct {
	notify notifyFunc
	icon   string
}

type option func(*Desktop)

// WithIcon sets the icon path shown next to the notification.
func WithIcon(path string) option {
	return func(d *Desktop) {
		d.icon = path
	}
}

func NewDesktop(appName string, opts ...option) *Desktop {
	if appName != "" {
		beeep.AppName = appName
	}

	d := &Desktop{notify: beeep.Notify}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Message renders the notification body for an order.
func Message(o order.Order) string {
	return fmt.Sprintf("Order #%s - $%s", o.ShortID(), o.Total.StringFixed(2))
}

// NotifyNewOrder shows the new order notification. The call is not bounded by
// ctx; beeep returns as soon as the daemon accepted the message.
func (d *Desktop) NotifyNewOrder(_ context.Context, o order.Order) error {
	if err := d.notify(Title, Message(o), d.icon); err != nil {
		return fmt.Errorf("failed to show notification for order %s: %w", o.ID, err)
	}

	return nil
}
