package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Guizzs26/go-field-sync/internal/mapper"
	"github.com/Guizzs26/go-field-sync/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

const confirmTimeout = 10 * time.Second

// RabbitMQIngestClient publishes plot batches to a topic exchange. A publisher
// confirm ACK is the collector's acceptance of the whole batch
type RabbitMQIngestClient struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	logger     *slog.Logger
	connClosed chan *amqp.Error
	chanClosed chan *amqp.Error
	closeOnce  sync.Once
	healthy    atomic.Bool
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewRabbitMQIngestClient connects, declares the exchange with its durable ingest
// queue and enables Publisher Confirms. The queue is bound before anything is
// published, so a confirmed batch is never dropped for lack of a route
func NewRabbitMQIngestClient(amqpURL, exchange, queue string, l *slog.Logger) (*RabbitMQIngestClient, error) {
	c, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := c.Channel()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		c.Close()
		return nil, fmt.Errorf("failed to declare topic exchange: %w", err)
	}

	q, err := ch.QueueDeclare(queue, true, false, false, false, amqp.Table{
		"x-queue-type": "quorum",
	})
	if err != nil {
		ch.Close()
		c.Close()
		return nil, fmt.Errorf("failed to declare ingest queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, "fieldsync.#", exchange, false, nil); err != nil {
		ch.Close()
		c.Close()
		return nil, fmt.Errorf("failed to bind ingest queue: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		ch.Close()
		c.Close()
		return nil, fmt.Errorf("failed to activate Publisher Confirms: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &RabbitMQIngestClient{
		conn:       c,
		channel:    ch,
		exchange:   exchange,
		logger:     l,
		connClosed: make(chan *amqp.Error, 1),
		chanClosed: make(chan *amqp.Error, 1),
		ctx:        ctx,
		cancel:     cancel,
	}

	client.healthy.Store(true)

	client.conn.NotifyClose(client.connClosed)
	client.channel.NotifyClose(client.chanClosed)

	go func() {
		select {
		case err := <-client.connClosed:
			client.healthy.Store(false)
			l.Warn("RabbitMQ connection closed", "error", err)
		case err := <-client.chanClosed:
			client.healthy.Store(false)
			l.Warn("RabbitMQ channel closed", "error", err)
		case <-client.ctx.Done():
			return
		}
	}()

	l.Info("Connected to RabbitMQ ingest exchange", "exchange", exchange, "queue", q.Name)
	return client, nil
}

// RoutingKey addresses a batch as fieldsync.<type>.<plot>
func RoutingKey(b mapper.Batch) string {
	return fmt.Sprintf("fieldsync.%s.%s", b.RecordType, url.PathEscape(b.PlotID))
}

// Transmit publishes the batch and blocks until the broker confirms or rejects it
func (r *RabbitMQIngestClient) Transmit(ctx context.Context, b mapper.Batch) error {
	fail := func(retryable bool, err error) error {
		return &models.TransportError{
			RecordType: b.RecordType,
			PlotID:     b.PlotID,
			Retryable:  retryable,
			Err:        err,
		}
	}

	if !r.IsHealthy() {
		return fail(false, fmt.Errorf("broker connection is closed"))
	}

	body, err := json.Marshal(b)
	if err != nil {
		return fail(false, fmt.Errorf("failed to serialize batch: %w", err))
	}

	routingKey := RoutingKey(b)
	l := r.logger.With("routing_key", routingKey, "records", len(b.Items))

	deferred, err := r.channel.PublishWithDeferredConfirmWithContext(
		ctx,
		r.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			Headers: amqp.Table{
				"record_type": string(b.RecordType),
				"plot_id":     b.PlotID,
			},
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		l.Error("failed to publish batch to exchange", "error", err)
		return fail(true, fmt.Errorf("publish call failed: %w", err))
	}

	// The wait for the confirm is bounded by confirmTimeout only
	timer := time.NewTimer(confirmTimeout)
	defer timer.Stop()

	select {
	case <-deferred.Done():
		if !deferred.Acked() {
			return fail(true, fmt.Errorf("RabbitMQ NACK received: batch not persisted"))
		}
		l.Debug("Batch confirmed by broker")
		return nil
	case <-timer.C:
		return fail(true, fmt.Errorf("publisher confirm timeout"))
	}
}

// Close gracefully shuts down the RabbitMQ resources
func (r *RabbitMQIngestClient) Close() error {
	r.closeOnce.Do(func() {
		r.logger.Info("Terminating RabbitMQ ingest client")
		r.cancel()
		if r.channel != nil {
			r.channel.Close()
		}
		if r.conn != nil {
			r.conn.Close()
		}
	})
	return nil
}

// IsHealthy returns true if the connection and channel are active
func (r *RabbitMQIngestClient) IsHealthy() bool {
	return r.healthy.Load()
}
