// Package rabbitmq publishes print action log entries to an AMQP queue.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/corray333/backend-labs/adminlocal/internal/dal/rabbitmq"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/printlog"
	"github.com/streadway/amqp"
)

const QueueName = "admin.print.logged"

// maxBacklog bounds the queue while nothing consumes print events.
const maxBacklog = 10000

// publisher is the part of *amqp.Channel used here.
type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type PrintLogRabbitMQRepository struct {
	channel publisher
	queue   string
}

func NewPrintLogRabbitMQRepository(client *rabbitmq.Client) (*PrintLogRabbitMQRepository, error) {
	queue, err := client.DeclareEventQueue(rabbitmq.EventQueue{
		Name:      QueueName,
		MaxLength: maxBacklog,
	})
	if err != nil {
		return nil, err
	}

	return &PrintLogRabbitMQRepository{
		channel: client.Channel(),
		queue:   queue,
	}, nil
}

func (r *PrintLogRabbitMQRepository) Append(_ context.Context, entry printlog.Entry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal print log entry: %w", err)
	}

	if err := r.channel.Publish(
		"",
		r.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    entry.Timestamp,
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("failed to publish print log entry: %w", err)
	}

	return nil
}
