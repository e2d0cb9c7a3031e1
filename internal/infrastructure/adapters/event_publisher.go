package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	"github.com/fintrack/fintrack_service/pkg/metrics"
)

// AMQPPublisher publishes ledger events to a topic exchange, routed by event kind
type AMQPPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	mu       sync.Mutex
	logger   *zap.Logger
}

func NewAMQPPublisher(url, exchange string, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	logger.Info("Connected to AMQP broker", zap.String("exchange", exchange))
	return &AMQPPublisher{conn: conn, channel: channel, exchange: exchange, logger: logger}, nil
}

// PublishTransactionEvent publishes the event with its kind as routing key
func (p *AMQPPublisher) PublishTransactionEvent(ctx context.Context, event *entities.TransactionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// channels are not safe for concurrent publishing
	p.mu.Lock()
	err = p.channel.PublishWithContext(
		ctx,
		p.exchange, // exchange
		event.Kind, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	p.mu.Unlock()
	if err != nil {
		metrics.EventsPublished.WithLabelValues(event.Kind, "error").Inc()
		return fmt.Errorf("publish message: %w", err)
	}

	metrics.EventsPublished.WithLabelValues(event.Kind, "success").Inc()
	p.logger.Debug("Published transaction event",
		zap.String("kind", event.Kind),
		zap.String("user_id", event.UserID.String()))
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// LogPublisher records events in the log when no broker is configured
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishTransactionEvent(ctx context.Context, event *entities.TransactionEvent) error {
	metrics.EventsPublished.WithLabelValues(event.Kind, "logged").Inc()
	p.logger.Info("Transaction event",
		zap.String("kind", event.Kind),
		zap.String("user_id", event.UserID.String()),
		zap.String("balance", event.Balance.String()))
	return nil
}
