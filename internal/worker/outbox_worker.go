package worker

import (
	"context"
	"time"

	"shareit/internal/events"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// OutboxStore is the slice of the booking store the worker needs.
type OutboxStore interface {
	GetPendingEvents(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	MarkEventPublished(ctx context.Context, id int64) error
	MarkEventRetry(ctx context.Context, id int64, lastError string, nextRetryAt time.Time) error
	MarkEventFailed(ctx context.Context, id int64, lastError string) error
}

// OutboxWorker drains persisted booking events and publishes them to the
// broker, retrying transient failures with exponential backoff.
type OutboxWorker struct {
	store        OutboxStore
	publisher    events.Publisher
	retryPolicy  RetryPolicy
	pollInterval time.Duration
	batchSize    int
	logger       *zerolog.Logger
}

func NewOutboxWorker(store OutboxStore, publisher events.Publisher, retry RetryPolicy, pollInterval time.Duration, batchSize int, logger *zerolog.Logger) *OutboxWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}

	return &OutboxWorker{
		store:        store,
		publisher:    publisher,
		retryPolicy:  retry,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		logger:       logger,
	}
}

// Run polls the outbox until the context is cancelled.
func (w *OutboxWorker) Run(ctx context.Context) {
	w.logger.Info().Dur("poll_interval", w.pollInterval).Msg("outbox worker started")

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("outbox worker stopped")
			return
		case <-ticker.C:
			w.DrainOnce(ctx)
		}
	}
}

// DrainOnce publishes one batch of due events.
func (w *OutboxWorker) DrainOnce(ctx context.Context) {
	pending, err := w.store.GetPendingEvents(ctx, w.batchSize)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to load pending events")
		return
	}

	for _, event := range pending {
		w.process(ctx, event)
	}
}

func (w *OutboxWorker) process(ctx context.Context, event models.OutboxEvent) {
	err := w.publisher.Publish(ctx, event.EventType, []byte(event.Payload))
	if err == nil {
		if err := w.store.MarkEventPublished(ctx, event.ID); err != nil {
			w.logger.Error().Err(err).Int64("event_id", event.ID).Msg("failed to mark event published")
			return
		}
		metrics.IncEventPublished("ok")
		w.logger.Debug().Int64("event_id", event.ID).Str("event_type", event.EventType).Msg("event published")
		return
	}

	attempt := event.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		metrics.IncEventPublished("failed")
		w.logger.Error().Err(err).Int64("event_id", event.ID).Int("attempts", attempt).
			Msg("event exhausted retries, moving to failed")
		if err := w.store.MarkEventFailed(ctx, event.ID, err.Error()); err != nil {
			w.logger.Error().Err(err).Int64("event_id", event.ID).Msg("failed to mark event failed")
		}
		return
	}

	metrics.IncEventPublished("retry")
	nextRetry := time.Now().Add(w.retryPolicy.NextDelay(attempt))
	w.logger.Warn().Err(err).Int64("event_id", event.ID).Time("next_retry", nextRetry).
		Msg("event publish failed, scheduling retry")
	if err := w.store.MarkEventRetry(ctx, event.ID, err.Error(), nextRetry); err != nil {
		w.logger.Error().Err(err).Int64("event_id", event.ID).Msg("failed to mark event for retry")
	}
}
