package repository

import (
	"context"
	"time"

	"coaching-payments/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OutboxRepository interface {
	Enqueue(ctx context.Context, tx *gorm.DB, msg *model.OutboxMessage) error
	FetchPending(ctx context.Context, limit int) ([]*model.OutboxMessage, error)
	MarkSent(ctx context.Context, id string) error
	MarkAttemptFailed(ctx context.Context, id string, cause error, maxAttempts int) error
}

type outboxRepoImpl struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepoImpl{db: db}
}

// Enqueue must run on the transaction that produced the event.
func (r *outboxRepoImpl) Enqueue(ctx context.Context, tx *gorm.DB, msg *model.OutboxMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.Status = model.OutboxStatusPending

	return tx.WithContext(ctx).Create(msg).Error
}

func (r *outboxRepoImpl) FetchPending(ctx context.Context, limit int) ([]*model.OutboxMessage, error) {
	var msgs []*model.OutboxMessage
	err := r.db.WithContext(ctx).
		Where("status = ?", model.OutboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}

	return msgs, nil
}

func (r *outboxRepoImpl) MarkSent(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.OutboxMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  model.OutboxStatusSent,
			"sent_at": time.Now(),
		}).Error
}

// MarkAttemptFailed bumps attempts and parks the message as FAILED once
// maxAttempts is reached.
func (r *outboxRepoImpl) MarkAttemptFailed(ctx context.Context, id string, cause error, maxAttempts int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var msg model.OutboxMessage
		if err := tx.Where("id = ?", id).First(&msg).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"attempts":   msg.Attempts + 1,
			"last_error": cause.Error(),
		}
		if msg.Attempts+1 >= maxAttempts {
			updates["status"] = model.OutboxStatusFailed
		}

		return tx.Model(&msg).Updates(updates).Error
	})
}
