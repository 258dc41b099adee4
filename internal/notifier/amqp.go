package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/amishk599/skillpulse/internal/model"
)

// DefaultExchange receives generation events when none is configured.
const DefaultExchange = "skillpulse.events"

// Ensure AMQPNotifier implements model.Notifier.
var _ model.Notifier = (*AMQPNotifier)(nil)

// publisher is the subset of *amqp.Channel used to send events.
type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPNotifier publishes generation events as JSON to a topic exchange.
// Routing keys are "summary.<source>", e.g. "summary.ai".
type AMQPNotifier struct {
	conn     *amqp.Connection
	ch       publisher
	exchange string
	logger   *slog.Logger
}

// DialAMQP connects to the broker at url and declares exchange as a durable
// topic exchange.
func DialAMQP(url, exchange string, logger *slog.Logger) (*AMQPNotifier, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialling rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declaring exchange %s: %w", exchange, err)
	}
	return &AMQPNotifier{conn: conn, ch: ch, exchange: exchange, logger: logger}, nil
}

func newAMQPNotifier(ch publisher, exchange string, logger *slog.Logger) *AMQPNotifier {
	return &AMQPNotifier{ch: ch, exchange: exchange, logger: logger}
}

// Notify publishes e. The context is only checked before publishing because
// the channel API is synchronous.
func (n *AMQPNotifier) Notify(ctx context.Context, e model.GenerationEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	key := "summary." + string(e.Source)
	if err := n.ch.Publish(
		n.exchange,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   e.ID,
			Timestamp:   e.At,
			Body:        body,
		},
	); err != nil {
		return fmt.Errorf("publishing to %s/%s: %w", n.exchange, key, err)
	}
	n.logger.Debug("event published", "exchange", n.exchange, "routing_key", key, "event_id", e.ID)
	return nil
}

// Close closes the broker connection.
func (n *AMQPNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Close()
}
