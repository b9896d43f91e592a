package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/xavierca1/doula-crm/internal/entity"
	"github.com/xavierca1/doula-crm/internal/logging"
)

// ConversionNotifier tells the practice team about a converted lead.
type ConversionNotifier interface {
	SendConversionNotice(ctx context.Context, event entity.LeadConvertedEvent) error
}

// Deduplicator remembers message ids whose notice was sent.
type Deduplicator interface {
	Delivered(ctx context.Context, messageID string) (bool, error)
	MarkDelivered(ctx context.Context, messageID string) error
}

type Worker struct {
	Channel  *amqp.Channel
	Notifier ConversionNotifier
	Dedup    Deduplicator
	Logger   logrus.FieldLogger
}

// NewWorker builds the notification consumer. dedup may be nil.
func NewWorker(ch *amqp.Channel, notifier ConversionNotifier, dedup Deduplicator, logger logrus.FieldLogger) *Worker {
	return &Worker{
		Channel:  ch,
		Notifier: notifier,
		Dedup:    dedup,
		Logger:   logging.OrDiscard(logger),
	}
}

// Start consumes queueName until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer on %s: %w", queueName, err)
	}

	w.Logger.WithField("queue", queueName).Info("notification worker started")

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("notification worker stopped")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", queueName)
			}
			w.handleDelivery(ctx, d)
		}
	}
}

// handleDelivery acks processed and duplicate messages. Malformed payloads and
// notifier failures are rejected without requeue so they land in the DLQ.
func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	log := w.Logger.WithFields(logrus.Fields{"message_id": d.MessageId, "type": d.Type})

	var event entity.LeadConvertedEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		log.WithError(err).Error("malformed lead.converted payload")
		d.Nack(false, false)
		return
	}
	log = log.WithField("lead_id", event.LeadID)

	dedup := w.Dedup != nil && d.MessageId != ""
	if dedup {
		seen, err := w.Dedup.Delivered(ctx, d.MessageId)
		if err != nil {
			log.WithError(err).Warn("dedup check failed, processing anyway")
		} else if seen {
			log.Info("duplicate delivery skipped")
			d.Ack(false)
			return
		}
	}

	if err := w.Notifier.SendConversionNotice(ctx, event); err != nil {
		log.WithError(err).Error("conversion notice failed")
		d.Nack(false, false)
		return
	}

	// only a sent notice is recorded, so a failed one can be redelivered
	if dedup {
		if err := w.Dedup.MarkDelivered(ctx, d.MessageId); err != nil {
			log.WithError(err).Warn("could not record delivery")
		}
	}

	log.Info("conversion notice sent")
	d.Ack(false)
}
