package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shareit/internal/models"
)

func (db *DB) EnqueueEvent(ctx context.Context, event *models.OutboxEvent) error {
	query := `INSERT INTO event_outbox (event_type, booking_id, payload, status, retry_count, last_error, created_at)
              VALUES (?, ?, ?, ?, 0, '', ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		event.EventType, event.BookingID, event.Payload, models.EventStatusPending, now,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	event.ID = id
	event.Status = models.EventStatusPending
	event.CreatedAt = now

	return nil
}

// GetPendingEvents returns events due for publishing, oldest first.
func (db *DB) GetPendingEvents(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	query := `SELECT id, event_type, booking_id, payload, status, retry_count, last_error, created_at, processed_at, next_retry_at
              FROM event_outbox
              WHERE status IN (?, ?) AND (next_retry_at IS NULL OR next_retry_at <= ?)
              ORDER BY created_at ASC, id ASC LIMIT ?`
	rows, err := db.QueryContext(ctx, query,
		models.EventStatusPending, models.EventStatusRetry, time.Now().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending events: %w", err)
	}
	defer rows.Close()

	var events []models.OutboxEvent
	for rows.Next() {
		var e models.OutboxEvent
		var processedAt, nextRetryAt sql.NullTime
		err := rows.Scan(&e.ID, &e.EventType, &e.BookingID, &e.Payload, &e.Status,
			&e.RetryCount, &e.LastError, &e.CreatedAt, &processedAt, &nextRetryAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if processedAt.Valid {
			e.ProcessedAt = processedAt.Time
		}
		if nextRetryAt.Valid {
			e.NextRetryAt = nextRetryAt.Time
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

func (db *DB) MarkEventPublished(ctx context.Context, id int64) error {
	query := `UPDATE event_outbox SET status = ?, processed_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, models.EventStatusPublished, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark event published: %w", err)
	}
	return nil
}

func (db *DB) MarkEventRetry(ctx context.Context, id int64, lastError string, nextRetryAt time.Time) error {
	query := `UPDATE event_outbox SET status = ?, retry_count = retry_count + 1, last_error = ?, next_retry_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, models.EventStatusRetry, lastError, nextRetryAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark event for retry: %w", err)
	}
	return nil
}

func (db *DB) MarkEventFailed(ctx context.Context, id int64, lastError string) error {
	query := `UPDATE event_outbox SET status = ?, last_error = ?, processed_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, models.EventStatusFailed, lastError, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark event failed: %w", err)
	}
	return nil
}
