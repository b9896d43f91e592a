package queue

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/xavierca1/doula-crm/internal/entity"
)

// channelPublisher is the part of *amqp.Channel the producer uses.
type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch channelPublisher
}

func NewProducer(ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

// PublishEvent sends an outbox event to the CRM exchange, routed by its type. The
// outbox id travels as MessageId so consumers can drop redeliveries.
func (p *RabbitMQProducer) PublishEvent(ctx context.Context, e *entity.OutboxEvent) error {
	err := p.Ch.PublishWithContext(ctx,
		ExchangeName,
		e.EventType,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    e.ID,
			Type:         e.EventType,
			Timestamp:    e.CreatedAt,
			Body:         e.Payload,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s %s: %w", e.EventType, e.ID, err)
	}
	return nil
}
