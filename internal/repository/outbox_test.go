package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"coaching-payments/internal/dbtest"
	"coaching-payments/internal/model"
	"coaching-payments/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxLifecycle(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewOutboxRepository(db)
	ctx := context.Background()

	first := &model.OutboxMessage{AggregateID: "pay-1", EventType: "AccessGranted", Topic: "course-access", Key: "pay-1", Payload: []byte(`{"n":1}`)}
	require.NoError(t, repo.Enqueue(ctx, db, first))
	time.Sleep(2 * time.Millisecond)
	second := &model.OutboxMessage{AggregateID: "pay-2", EventType: "AccessGranted", Topic: "course-access", Key: "pay-2", Payload: []byte(`{"n":2}`)}
	require.NoError(t, repo.Enqueue(ctx, db, second))

	pending, err := repo.FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, model.OutboxStatusPending, pending[0].Status)

	require.NoError(t, repo.MarkSent(ctx, first.ID))

	pending, err = repo.FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
}

func TestOutboxMarkAttemptFailedParksAfterMax(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewOutboxRepository(db)
	ctx := context.Background()

	msg := &model.OutboxMessage{AggregateID: "pay-1", EventType: "AccessGranted", Topic: "t", Payload: []byte(`{}`)}
	require.NoError(t, repo.Enqueue(ctx, db, msg))

	boom := errors.New("broker down")
	require.NoError(t, repo.MarkAttemptFailed(ctx, msg.ID, boom, 2))

	var stored model.OutboxMessage
	require.NoError(t, db.First(&stored, "id = ?", msg.ID).Error)
	assert.Equal(t, 1, stored.Attempts)
	assert.Equal(t, model.OutboxStatusPending, stored.Status)
	assert.Equal(t, "broker down", stored.LastError)

	require.NoError(t, repo.MarkAttemptFailed(ctx, msg.ID, boom, 2))
	require.NoError(t, db.First(&stored, "id = ?", msg.ID).Error)
	assert.Equal(t, 2, stored.Attempts)
	assert.Equal(t, model.OutboxStatusFailed, stored.Status)

	pending, err := repo.FetchPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
