package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"
)

const bookingColumns = `b.id, b.item_id, b.booker_id, b.start_time, b.end_time, b.status, b.created_at, b.updated_at, i.name, u.name`

// bookingJoins resolves the denormalized item and booker names selected by
// bookingColumns.
const bookingJoins = ` JOIN items i ON i.id = b.item_id JOIN users u ON u.id = b.booker_id`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	var b models.Booking
	var start, end int64
	err := row.Scan(&b.ID, &b.ItemID, &b.BookerID, &start, &end, &b.Status, &b.CreatedAt, &b.UpdatedAt, &b.ItemName, &b.BookerName)
	if err != nil {
		return nil, err
	}
	b.Start = time.Unix(start, 0).UTC()
	b.End = time.Unix(end, 0).UTC()
	return &b, nil
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (item_id, booker_id, start_time, end_time, status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		booking.ItemID,
		booking.BookerID,
		booking.Start.Unix(),
		booking.End.Unix(),
		booking.Status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now

	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b` + bookingJoins + ` WHERE b.id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// GetBookingForOwner returns the booking only when the caller owns the
// booked item.
func (db *DB) GetBookingForOwner(ctx context.Context, id, ownerID int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b` + bookingJoins + `
              WHERE b.id = ? AND i.owner_id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking for owner: %w", err)
	}
	return booking, nil
}

// GetBookingForBooker returns the booking only when the caller created it.
func (db *DB) GetBookingForBooker(ctx context.Context, id, bookerID int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b` + bookingJoins + ` WHERE b.id = ? AND b.booker_id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id, bookerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking for booker: %w", err)
	}
	return booking, nil
}

// UpdateBookingStatusFromWaiting flips the status with a conditional update
// so that two concurrent approvals cannot both pass the WAITING guard.
func (db *DB) UpdateBookingStatusFromWaiting(ctx context.Context, id int64, status string) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now().UTC(), id, models.StatusWaiting)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// stateClause translates a booking state filter into a SQL predicate on the
// bookings table. Time filters use strict inequalities on unix seconds;
// status filters fall through to a literal equality match.
func stateClause(state models.BookingState, now time.Time) (string, []any) {
	switch state {
	case models.StateAll:
		return "", nil
	case models.StateCurrent:
		return " AND b.start_time < ? AND b.end_time > ?", []any{now.Unix(), now.Unix()}
	case models.StatePast:
		return " AND b.end_time < ?", []any{now.Unix()}
	case models.StateFuture:
		return " AND b.start_time > ?", []any{now.Unix()}
	default:
		return " AND b.status = ?", []any{string(state)}
	}
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}

// GetBookingsByBooker lists bookings created by a user, newest start first.
func (db *DB) GetBookingsByBooker(ctx context.Context, bookerID int64, state models.BookingState, now time.Time, limit, offset int) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b` + bookingJoins + ` WHERE b.booker_id = ?`
	args := []any{bookerID}

	clause, clauseArgs := stateClause(state, now)
	query += clause
	args = append(args, clauseArgs...)

	query += ` ORDER BY b.start_time DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	return db.queryBookings(ctx, query, args...)
}

// GetBookingsByOwner lists bookings on items owned by a user, newest start first.
func (db *DB) GetBookingsByOwner(ctx context.Context, ownerID int64, state models.BookingState, now time.Time, limit, offset int) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b` + bookingJoins + `
              WHERE i.owner_id = ?`
	args := []any{ownerID}

	clause, clauseArgs := stateClause(state, now)
	query += clause
	args = append(args, clauseArgs...)

	query += ` ORDER BY b.start_time DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	return db.queryBookings(ctx, query, args...)
}

// GetAllBookingsByOwner lists every booking on the owner's items without
// pagination, newest start first. Feeds the report export.
func (db *DB) GetAllBookingsByOwner(ctx context.Context, ownerID int64) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b` + bookingJoins + `
              WHERE i.owner_id = ? ORDER BY b.start_time DESC`
	return db.queryBookings(ctx, query, ownerID)
}

// GetLastBooking returns the most recent approved booking started before now,
// or nil when the item has none.
func (db *DB) GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b` + bookingJoins + `
              WHERE b.item_id = ? AND b.status = ? AND b.start_time < ?
              ORDER BY b.start_time DESC LIMIT 1`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, itemID, models.StatusApproved, now.Unix()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last booking: %w", err)
	}
	return booking, nil
}

// GetNextBooking returns the soonest approved booking starting after now,
// or nil when the item has none.
func (db *DB) GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b` + bookingJoins + `
              WHERE b.item_id = ? AND b.status = ? AND b.start_time > ?
              ORDER BY b.start_time ASC LIMIT 1`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, itemID, models.StatusApproved, now.Unix()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next booking: %w", err)
	}
	return booking, nil
}

// HasApprovedOverlap reports whether [start, end) intersects an approved
// booking window on the item.
func (db *DB) HasApprovedOverlap(ctx context.Context, itemID int64, start, end time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM bookings b
              WHERE b.item_id = ? AND b.status = ? AND b.start_time < ? AND b.end_time > ?`
	var count int
	err := db.QueryRowContext(ctx, query, itemID, models.StatusApproved, end.Unix(), start.Unix()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}
	return count > 0, nil
}

// HasApprovedStartedBooking reports whether the user has an approved booking
// of the item whose window already started. Gates comment creation.
func (db *DB) HasApprovedStartedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM bookings b
              WHERE b.booker_id = ? AND b.item_id = ? AND b.status = ? AND b.start_time < ?`
	var count int
	err := db.QueryRowContext(ctx, query, bookerID, itemID, models.StatusApproved, now.Unix()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check started bookings: %w", err)
	}
	return count > 0, nil
}
