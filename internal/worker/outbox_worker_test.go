package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	published []string
	err       error
}

func (p *capturePublisher) Publish(_ context.Context, eventType string, _ []byte) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, eventType)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func setupOutbox(t *testing.T) *database.DB {
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func enqueue(t *testing.T, db *database.DB, eventType string) *models.OutboxEvent {
	event := &models.OutboxEvent{EventType: eventType, BookingID: 1, Payload: `{"id":1}`}
	require.NoError(t, db.EnqueueEvent(context.Background(), event))
	return event
}

func TestDrainOnce_PublishesPending(t *testing.T) {
	db := setupOutbox(t)
	publisher := &capturePublisher{}
	logger := zerolog.Nop()
	w := NewOutboxWorker(db, publisher, RetryPolicy{}, time.Second, 10, &logger)
	ctx := context.Background()

	enqueue(t, db, models.EventBookingCreated)
	enqueue(t, db, models.EventBookingApproved)

	w.DrainOnce(ctx)

	assert.Equal(t, []string{models.EventBookingCreated, models.EventBookingApproved}, publisher.published)

	pending, err := db.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDrainOnce_SchedulesRetry(t *testing.T) {
	db := setupOutbox(t)
	publisher := &capturePublisher{err: errors.New("broker down")}
	logger := zerolog.Nop()
	w := NewOutboxWorker(db, publisher, RetryPolicy{MaxRetries: 3}, time.Second, 10, &logger)
	ctx := context.Background()

	event := enqueue(t, db, models.EventBookingCreated)
	w.DrainOnce(ctx)

	// The event is rescheduled in the future, so it is not due now.
	pending, err := db.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Force the retry due and verify it carries the attempt bookkeeping.
	require.NoError(t, db.MarkEventRetry(ctx, event.ID, "broker down", time.Now().Add(-time.Second)))
	pending, err = db.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.EventStatusRetry, pending[0].Status)
	assert.Equal(t, "broker down", pending[0].LastError)
}

func TestDrainOnce_ExhaustsRetries(t *testing.T) {
	db := setupOutbox(t)
	publisher := &capturePublisher{err: errors.New("broker down")}
	logger := zerolog.Nop()
	w := NewOutboxWorker(db, publisher, RetryPolicy{MaxRetries: 1}, time.Second, 10, &logger)
	ctx := context.Background()

	enqueue(t, db, models.EventBookingCreated)
	w.DrainOnce(ctx)

	// With a single allowed attempt the event goes straight to failed and
	// never becomes due again.
	pending, err := db.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	var status string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT status FROM event_outbox`).Scan(&status))
	assert.Equal(t, models.EventStatusFailed, status)
}

func TestRetryPolicy_NextDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, MaxDelay: 10 * time.Second, BackoffFactor: 2}

	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
	assert.Equal(t, 4*time.Second, policy.NextDelay(3))
	assert.Equal(t, 10*time.Second, policy.NextDelay(10), "clamped to max delay")
	assert.Equal(t, time.Second, policy.NextDelay(0), "attempts are 1-based")
}
