package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const deliveryPrefix = "crm:delivered:"

// DeliveryDedup remembers message ids whose notice went out, so a redelivered
// event is acked without sending it again. An id is recorded only after a
// successful send; a failed or interrupted one leaves the message retryable.
type DeliveryDedup struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewDeliveryDedup(client *redis.Client, ttl time.Duration) *DeliveryDedup {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DeliveryDedup{Redis: client, TTL: ttl}
}

func (d *DeliveryDedup) Delivered(ctx context.Context, messageID string) (bool, error) {
	n, err := d.Redis.Exists(ctx, deliveryPrefix+messageID).Result()
	if err != nil {
		return false, fmt.Errorf("check delivery %s: %w", messageID, err)
	}
	return n > 0, nil
}

func (d *DeliveryDedup) MarkDelivered(ctx context.Context, messageID string) error {
	if err := d.Redis.Set(ctx, deliveryPrefix+messageID, 1, d.TTL).Err(); err != nil {
		return fmt.Errorf("record delivery %s: %w", messageID, err)
	}
	return nil
}
