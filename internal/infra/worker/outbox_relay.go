package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xavierca1/doula-crm/internal/entity"
	"github.com/xavierca1/doula-crm/internal/logging"
	"github.com/xavierca1/doula-crm/internal/usecase"
)

const (
	RelayPublished = "published"
	RelayFailed    = "failed"
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, e *entity.OutboxEvent) error
}

// OutboxRelay moves committed outbox events to the broker on a ticker.
type OutboxRelay struct {
	Repo         entity.OutboxRepositoryInterface
	Tx           usecase.TxManager
	Publisher    EventPublisher
	Logger       logrus.FieldLogger
	BatchSize    int
	TickInterval time.Duration
	RecordResult func(result string)
	Now          func() time.Time
}

func NewOutboxRelay(repo entity.OutboxRepositoryInterface, tx usecase.TxManager, publisher EventPublisher, interval time.Duration, logger logrus.FieldLogger) *OutboxRelay {
	if tx == nil {
		tx = usecase.NoTx
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &OutboxRelay{
		Repo:         repo,
		Tx:           tx,
		Publisher:    publisher,
		Logger:       logging.OrDiscard(logger),
		BatchSize:    50,
		TickInterval: interval,
		RecordResult: func(string) {},
		Now:          time.Now,
	}
}

func (w *OutboxRelay) Start(ctx context.Context) {
	w.Logger.WithField("interval", w.TickInterval.String()).Info("outbox relay started")

	ticker := time.NewTicker(w.TickInterval)
	defer ticker.Stop()

	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *OutboxRelay) tick(ctx context.Context) {
	published, err := w.RelayBatch(ctx)
	if err != nil {
		w.Logger.WithError(err).Error("outbox relay batch failed")
		return
	}
	if published > 0 {
		w.Logger.WithField("count", published).Info("outbox events published")
	}
}

// RelayBatch claims one batch of pending events and publishes them. Events that
// fail to publish get their attempt count bumped and are retried on a later tick.
func (w *OutboxRelay) RelayBatch(ctx context.Context) (int, error) {
	published := 0
	err := w.Tx.WithinTx(ctx, func(ctx context.Context) error {
		events, err := w.Repo.ClaimPending(ctx, w.BatchSize)
		if err != nil {
			return err
		}

		for _, e := range events {
			log := w.Logger.WithFields(logrus.Fields{"event_id": e.ID, "aggregate_id": e.AggregateID})

			if err := w.Publisher.PublishEvent(ctx, e); err != nil {
				log.WithError(err).Warn("outbox event publish failed")
				w.RecordResult(RelayFailed)
				if err := w.Repo.MarkFailed(ctx, e.ID, err.Error()); err != nil {
					return fmt.Errorf("mark event %s failed: %w", e.ID, err)
				}
				continue
			}

			if err := w.Repo.MarkPublished(ctx, e.ID, w.Now().UTC()); err != nil {
				return fmt.Errorf("mark event %s published: %w", e.ID, err)
			}
			w.RecordResult(RelayPublished)
			published++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return published, nil
}
