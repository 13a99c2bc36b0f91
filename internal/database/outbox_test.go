package database

import (
	"context"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enqueueTestEvent(t *testing.T, db *DB, eventType string, bookingID int64) *models.OutboxEvent {
	event := &models.OutboxEvent{EventType: eventType, BookingID: bookingID, Payload: `{"id":1}`}
	require.NoError(t, db.EnqueueEvent(context.Background(), event))
	return event
}

func TestEnqueueAndGetPendingEvents(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := enqueueTestEvent(t, db, models.EventBookingCreated, 1)
	second := enqueueTestEvent(t, db, models.EventBookingApproved, 1)

	pending, err := db.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID, "oldest first")
	assert.Equal(t, second.ID, pending[1].ID)
	assert.Equal(t, models.EventStatusPending, pending[0].Status)
}

func TestMarkEventPublished(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	event := enqueueTestEvent(t, db, models.EventBookingCreated, 1)
	require.NoError(t, db.MarkEventPublished(ctx, event.ID))

	pending, err := db.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMarkEventRetry(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	event := enqueueTestEvent(t, db, models.EventBookingCreated, 1)

	// Not due yet.
	require.NoError(t, db.MarkEventRetry(ctx, event.ID, "broker down", time.Now().Add(time.Hour)))
	pending, err := db.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Due.
	require.NoError(t, db.MarkEventRetry(ctx, event.ID, "broker down", time.Now().Add(-time.Second)))
	pending, err = db.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.EventStatusRetry, pending[0].Status)
	assert.Equal(t, 2, pending[0].RetryCount, "each retry mark increments the counter")
	assert.Equal(t, "broker down", pending[0].LastError)
}

func TestMarkEventFailed(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	event := enqueueTestEvent(t, db, models.EventBookingCreated, 1)
	require.NoError(t, db.MarkEventFailed(ctx, event.ID, "gave up"))

	pending, err := db.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
