package models

import (
	"fmt"
	"time"
)

const (
	StatusWaiting  = "WAITING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Booking ties a booker, an item and a time window together with a status.
// Item, booker and the window are immutable after creation; only the status
// changes, and only away from WAITING.
type Booking struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	BookerID  int64     `json:"booker_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Denormalized from the item and user rows on read. Not part of the
	// booking's own state and excluded from event payloads.
	ItemName   string `json:"-"`
	BookerName string `json:"-"`
}

// BookingState selects a subset of bookings by time relation to now or by
// literal status.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateApproved BookingState = "APPROVED"
	StateRejected BookingState = "REJECTED"
)

// ParseBookingState validates a raw filter value against the closed enum.
func ParseBookingState(value string) (BookingState, error) {
	switch state := BookingState(value); state {
	case StateAll, StateCurrent, StatePast, StateFuture,
		StateWaiting, StateApproved, StateRejected:
		return state, nil
	}
	return "", fmt.Errorf("Unknown state: %s", value)
}
