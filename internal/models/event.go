package models

import "time"

const (
	EventBookingCreated  = "booking.created"
	EventBookingApproved = "booking.approved"
	EventBookingRejected = "booking.rejected"
)

const (
	EventStatusPending   = "pending"
	EventStatusRetry     = "retry"
	EventStatusPublished = "published"
	EventStatusFailed    = "failed"
)

// OutboxEvent is a booking lifecycle event waiting to be published to the
// message broker. Events are persisted next to the booking mutation and
// drained by a background worker.
type OutboxEvent struct {
	ID          int64
	EventType   string
	BookingID   int64
	Payload     string
	Status      string
	RetryCount  int
	LastError   string
	CreatedAt   time.Time
	ProcessedAt time.Time
	NextRetryAt time.Time
}
