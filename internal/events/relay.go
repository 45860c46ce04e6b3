package events

import (
	"context"
	"time"

	"coaching-payments/internal/repository"

	"go.uber.org/zap"
)

const (
	maxPublishAttempts   = 5
	defaultRelayInterval = 2 * time.Second
)

// Relay drains the outbox to a Publisher after the producing transaction commits.
type Relay struct {
	outboxRepo repository.OutboxRepository
	publisher  Publisher
	interval   time.Duration
	batch      int
	logger     *zap.Logger
}

func NewRelay(outboxRepo repository.OutboxRepository, publisher Publisher, interval time.Duration, batch int, logger *zap.Logger) *Relay {
	logger = logger.With(zap.String("component", "outbox_relay"))
	if batch <= 0 {
		batch = 20
	}
	if interval <= 0 {
		logger.Warn("non-positive relay interval, using default",
			zap.Duration("interval", interval), zap.Duration("default", defaultRelayInterval))
		interval = defaultRelayInterval
	}
	return &Relay{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		interval:   interval,
		batch:      batch,
		logger:     logger,
	}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	r.logger.Info("outbox relay started", zap.Duration("interval", r.interval))
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
			r.Flush(ctx)
		}
	}
}

// Flush publishes one batch of pending messages and returns how many were sent.
func (r *Relay) Flush(ctx context.Context) int {
	msgs, err := r.outboxRepo.FetchPending(ctx, r.batch)
	if err != nil {
		r.logger.Error("fetch pending outbox messages", zap.Error(err))
		return 0
	}

	sent := 0
	for _, msg := range msgs {
		if err := r.publisher.Publish(ctx, msg.Topic, msg.Key, msg.Payload); err != nil {
			r.logger.Warn("publish outbox message",
				zap.String("message_id", msg.ID),
				zap.String("event_type", msg.EventType),
				zap.Int("attempt", msg.Attempts+1),
				zap.Error(err),
			)
			if err := r.outboxRepo.MarkAttemptFailed(ctx, msg.ID, err, maxPublishAttempts); err != nil {
				r.logger.Error("record outbox failure", zap.String("message_id", msg.ID), zap.Error(err))
			}
			continue
		}

		if err := r.outboxRepo.MarkSent(ctx, msg.ID); err != nil {
			r.logger.Error("mark outbox message sent", zap.String("message_id", msg.ID), zap.Error(err))
			continue
		}
		sent++
	}

	return sent
}
