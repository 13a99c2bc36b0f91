package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shareit/internal/database"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// BookingStore is the persistence port of the booking engine.
type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingForOwner(ctx context.Context, id, ownerID int64) (*models.Booking, error)
	GetBookingForBooker(ctx context.Context, id, bookerID int64) (*models.Booking, error)
	UpdateBookingStatusFromWaiting(ctx context.Context, id int64, status string) error
	GetBookingsByBooker(ctx context.Context, bookerID int64, state models.BookingState, now time.Time, limit, offset int) ([]models.Booking, error)
	GetBookingsByOwner(ctx context.Context, ownerID int64, state models.BookingState, now time.Time, limit, offset int) ([]models.Booking, error)
	GetAllBookingsByOwner(ctx context.Context, ownerID int64) ([]models.Booking, error)
	HasApprovedOverlap(ctx context.Context, itemID int64, start, end time.Time) (bool, error)
}

// UserDirectory resolves user ids; the booking engine reads it, never writes.
type UserDirectory interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// ItemCatalog resolves item ids; the booking engine reads it, never writes.
type ItemCatalog interface {
	GetItem(ctx context.Context, id int64) (*models.Item, error)
}

// EventRecorder persists booking lifecycle events for asynchronous publishing.
type EventRecorder interface {
	EnqueueEvent(ctx context.Context, event *models.OutboxEvent) error
}

// BookingService orchestrates the booking lifecycle: creation, approval,
// retrieval and filtered listing. It is the sole writer of booking status.
type BookingService struct {
	store  BookingStore
	users  UserDirectory
	items  ItemCatalog
	events EventRecorder
	logger *zerolog.Logger
}

func NewBookingService(store BookingStore, users UserDirectory, items ItemCatalog, events EventRecorder, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:  store,
		users:  users,
		items:  items,
		events: events,
		logger: logger,
	}
}

func (s *BookingService) resolveUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFoundError("user with id=%d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve user %d: %w", id, err)
	}
	return user, nil
}

// Create books an item for a time window. The booking starts out WAITING and
// stays pending until the item owner approves or rejects it.
func (s *BookingService) Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error) {
	booker, err := s.resolveUser(ctx, bookerID)
	if err != nil {
		metrics.IncBookingOp("create", "error")
		return nil, err
	}

	item, err := s.items.GetItem(ctx, itemID)
	if errors.Is(err, database.ErrNotFound) {
		metrics.IncBookingOp("create", "error")
		return nil, NotFoundError("item with id=%d not found", itemID)
	}
	if err != nil {
		metrics.IncBookingOp("create", "error")
		return nil, fmt.Errorf("resolve item %d: %w", itemID, err)
	}

	if item.OwnerID == booker.ID {
		metrics.IncBookingOp("create", "rejected")
		return nil, OwnerConflictError("owner cannot book own item")
	}

	if !item.Available {
		metrics.IncBookingOp("create", "rejected")
		return nil, NotAvailableError("item with id=%d is not available for booking", itemID)
	}

	// The time range is validated by the HTTP layer; re-assert strict
	// ordering so a misbehaving caller cannot persist an inverted window.
	if !start.Before(end) {
		metrics.IncBookingOp("create", "rejected")
		return nil, BadRequestError("booking start must be before its end")
	}

	overlaps, err := s.store.HasApprovedOverlap(ctx, itemID, start, end)
	if err != nil {
		metrics.IncBookingOp("create", "error")
		return nil, err
	}
	if overlaps {
		metrics.IncBookingOp("create", "rejected")
		return nil, NotAvailableError("item with id=%d is already booked for this period", itemID)
	}

	booking := &models.Booking{
		ItemID:   itemID,
		BookerID: bookerID,
		Start:    start,
		End:      end,
		Status:   models.StatusWaiting,
	}
	if err := s.store.CreateBooking(ctx, booking); err != nil {
		metrics.IncBookingOp("create", "error")
		return nil, err
	}
	booking.ItemName = item.Name
	booking.BookerName = booker.Name

	s.recordEvent(ctx, models.EventBookingCreated, booking)
	metrics.IncBookingOp("create", "ok")
	s.logger.Info().Int64("booking_id", booking.ID).Int64("item_id", itemID).
		Int64("booker_id", bookerID).Msg("booking created")

	return booking, nil
}

// Approve resolves a WAITING booking to APPROVED or REJECTED. The transition
// is terminal and only the item owner may perform it.
func (s *BookingService) Approve(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.Booking, error) {
	if _, err := s.resolveUser(ctx, ownerID); err != nil {
		metrics.IncBookingOp("approve", "error")
		return nil, err
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if errors.Is(err, database.ErrNotFound) {
		metrics.IncBookingOp("approve", "error")
		return nil, NotFoundError("booking with id=%d not found", bookingID)
	}
	if err != nil {
		metrics.IncBookingOp("approve", "error")
		return nil, err
	}

	if booking.Status != models.StatusWaiting {
		metrics.IncBookingOp("approve", "rejected")
		return nil, BadRequestError("status can only be changed while the booking is waiting")
	}

	item, err := s.items.GetItem(ctx, booking.ItemID)
	if err != nil {
		metrics.IncBookingOp("approve", "error")
		return nil, fmt.Errorf("resolve item %d: %w", booking.ItemID, err)
	}
	if item.OwnerID != ownerID {
		// Reported as absence so a stranger cannot probe booking ids.
		metrics.IncBookingOp("approve", "rejected")
		return nil, NotFoundError("booking with id=%d not found", bookingID)
	}

	status := models.StatusRejected
	eventType := models.EventBookingRejected
	if approved {
		status = models.StatusApproved
		eventType = models.EventBookingApproved
	}

	// Conditional update: a concurrent approval that won the race leaves
	// zero rows to change here.
	err = s.store.UpdateBookingStatusFromWaiting(ctx, bookingID, status)
	if errors.Is(err, database.ErrConcurrentModification) {
		metrics.IncBookingOp("approve", "rejected")
		return nil, BadRequestError("status can only be changed while the booking is waiting")
	}
	if err != nil {
		metrics.IncBookingOp("approve", "error")
		return nil, err
	}

	booking.Status = status
	s.recordEvent(ctx, eventType, booking)
	metrics.IncBookingOp("approve", "ok")
	s.logger.Info().Int64("booking_id", bookingID).Str("status", status).Msg("booking resolved")

	return booking, nil
}

// FindByUserAndID returns a booking visible to the user: the owner view is
// tried first, then the booker view. Anyone else gets NotFound.
func (s *BookingService) FindByUserAndID(ctx context.Context, bookingID, userID int64) (*models.Booking, error) {
	if _, err := s.resolveUser(ctx, userID); err != nil {
		return nil, err
	}

	booking, err := s.store.GetBookingForOwner(ctx, bookingID, userID)
	if err == nil {
		return booking, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	booking, err = s.store.GetBookingForBooker(ctx, bookingID, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFoundError("booking with id=%d not found for user with id=%d", bookingID, userID)
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// FindAllByBooker lists the user's own bookings filtered by state,
// ordered by start descending.
func (s *BookingService) FindAllByBooker(ctx context.Context, bookerID int64, stateFilter string, from, size int) ([]models.Booking, error) {
	if _, err := s.resolveUser(ctx, bookerID); err != nil {
		return nil, err
	}

	state, limit, offset, err := parseListArgs(stateFilter, from, size)
	if err != nil {
		return nil, err
	}

	return s.store.GetBookingsByBooker(ctx, bookerID, state, time.Now(), limit, offset)
}

// FindAllByOwner lists bookings on the user's items filtered by state,
// ordered by start descending.
func (s *BookingService) FindAllByOwner(ctx context.Context, ownerID int64, stateFilter string, from, size int) ([]models.Booking, error) {
	if _, err := s.resolveUser(ctx, ownerID); err != nil {
		return nil, err
	}

	state, limit, offset, err := parseListArgs(stateFilter, from, size)
	if err != nil {
		return nil, err
	}

	return s.store.GetBookingsByOwner(ctx, ownerID, state, time.Now(), limit, offset)
}

// Report returns every booking on the owner's items, newest start first,
// for export. No state filter and no pagination.
func (s *BookingService) Report(ctx context.Context, ownerID int64) ([]models.Booking, error) {
	if _, err := s.resolveUser(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.store.GetAllBookingsByOwner(ctx, ownerID)
}

// parseListArgs validates the state filter against the closed enum before
// any query dispatch and converts from/size into page-index pagination
// (page = from / size), matching the historical API contract.
func parseListArgs(stateFilter string, from, size int) (models.BookingState, int, int, error) {
	state, err := models.ParseBookingState(stateFilter)
	if err != nil {
		return "", 0, 0, BadRequestError("%s", err.Error())
	}
	if from < 0 || size <= 0 {
		return "", 0, 0, BadRequestError("invalid pagination: from=%d size=%d", from, size)
	}
	offset := from / size * size
	return state, size, offset, nil
}

func (s *BookingService) recordEvent(ctx context.Context, eventType string, booking *models.Booking) {
	if s.events == nil {
		return
	}

	payload, err := json.Marshal(booking)
	if err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("failed to marshal booking event")
		return
	}

	event := &models.OutboxEvent{
		EventType: eventType,
		BookingID: booking.ID,
		Payload:   string(payload),
	}
	if err := s.events.EnqueueEvent(ctx, event); err != nil {
		// The booking mutation already succeeded; losing an event is
		// logged, not surfaced.
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).
			Str("event_type", eventType).Msg("failed to enqueue booking event")
	}
}
