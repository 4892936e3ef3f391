package reminders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rxkeeper/internal/clock"
	"github.com/dmitrijs2005/rxkeeper/internal/logging"
	"github.com/dmitrijs2005/rxkeeper/internal/models"
	"github.com/rabbitmq/amqp091-go"
)

const (
	DefaultExchange   = "rxkeeper.events"
	RoutingReschedule = "reminders.rescheduled"
)

// RescheduleMessage carries the complete reminder plan. Consumers replace
// their schedule with it.
type RescheduleMessage struct {
	IssuedAt  time.Time  `json:"issuedAt"`
	Reminders []Reminder `json:"reminders"`
}

// publisher is the subset of *amqp091.Channel used here.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPScheduler hands the reminder plan to an external delivery service
// through a topic exchange.
type AMQPScheduler struct {
	conn     *amqp091.Connection
	ch       publisher
	exchange string
	clock    clock.Clock
	logger   logging.Logger
}

// DialAMQP connects, opens a channel and declares the topic exchange.
func DialAMQP(url, exchange string, c clock.Clock, logger logging.Logger) (*AMQPScheduler, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	s := newAMQPScheduler(ch, exchange, c, logger)
	s.conn = conn
	return s, nil
}

func newAMQPScheduler(ch publisher, exchange string, c clock.Clock, logger logging.Logger) *AMQPScheduler {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &AMQPScheduler{ch: ch, exchange: exchange, clock: c, logger: logger}
}

// Reschedule publishes the full plan as one persistent message.
func (s *AMQPScheduler) Reschedule(ctx context.Context, tasks []models.Task) error {
	msg := RescheduleMessage{IssuedAt: s.clock.Now(), Reminders: Plan(tasks)}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode reminder plan: %w", err)
	}

	err = s.ch.PublishWithContext(ctx, s.exchange, RoutingReschedule, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    msg.IssuedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish reminder plan: %w", err)
	}

	s.logger.Debug(ctx, "reminder plan published", "exchange", s.exchange, "reminders", len(msg.Reminders))
	return nil
}

// Close closes the channel and the connection.
func (s *AMQPScheduler) Close() error {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
