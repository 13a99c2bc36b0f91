package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// ItemStore is the persistence port of the item catalog.
type ItemStore interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	GetItemForOwner(ctx context.Context, id, ownerID int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItemsByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]models.Item, error)
	SearchItems(ctx context.Context, text string, limit, offset int) ([]models.Item, error)
}

// BookingProjector computes the derived last/next approved booking views
// and answers booking-history questions for the comment guard.
type BookingProjector interface {
	GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	HasApprovedStartedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)
}

// CommentStore persists and lists item comments.
type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error)
}

// ItemDetails is an item enriched with its derived booking projections and
// comments. LastBooking/NextBooking are recomputed on every read; whether a
// viewer gets to see them is decided at the presentation boundary.
type ItemDetails struct {
	models.Item
	LastBooking *models.Booking
	NextBooking *models.Booking
	Comments    []models.Comment
}

// ItemUpdate carries a partial item update; nil fields stay unchanged.
type ItemUpdate struct {
	Name        *string
	Description *string
	Available   *bool
}

type ItemService struct {
	store    ItemStore
	bookings BookingProjector
	comments CommentStore
	users    UserDirectory
	logger   *zerolog.Logger
}

func NewItemService(store ItemStore, bookings BookingProjector, comments CommentStore, users UserDirectory, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		store:    store,
		bookings: bookings,
		comments: comments,
		users:    users,
		logger:   logger,
	}
}

func (s *ItemService) resolveUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFoundError("user with id=%d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve user %d: %w", id, err)
	}
	return user, nil
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	if _, err := s.resolveUser(ctx, ownerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(item.Name) == "" {
		return nil, BadRequestError("item name must not be blank")
	}

	item.OwnerID = ownerID
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	return item, nil
}

// Update applies a partial update to an item owned by the caller.
func (s *ItemService) Update(ctx context.Context, ownerID, itemID int64, update ItemUpdate) (*models.Item, error) {
	if _, err := s.resolveUser(ctx, ownerID); err != nil {
		return nil, err
	}

	item, err := s.store.GetItemForOwner(ctx, itemID, ownerID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFoundError("item with id=%d not found for user with id=%d", itemID, ownerID)
	}
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		item.Name = *update.Name
	}
	if update.Description != nil {
		item.Description = *update.Description
	}
	if update.Available != nil {
		item.Available = *update.Available
	}

	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// FindByID returns the item with comments and last/next booking projections.
func (s *ItemService) FindByID(ctx context.Context, viewerID, itemID int64) (*ItemDetails, error) {
	if _, err := s.resolveUser(ctx, viewerID); err != nil {
		return nil, err
	}

	item, err := s.store.GetItem(ctx, itemID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFoundError("item with id=%d not found", itemID)
	}
	if err != nil {
		return nil, err
	}

	return s.details(ctx, *item)
}

// FindAllByOwner lists the caller's items ordered by id, each with its
// projections and comments.
func (s *ItemService) FindAllByOwner(ctx context.Context, ownerID int64, from, size int) ([]ItemDetails, error) {
	if _, err := s.resolveUser(ctx, ownerID); err != nil {
		return nil, err
	}
	if from < 0 || size <= 0 {
		return nil, BadRequestError("invalid pagination: from=%d size=%d", from, size)
	}

	items, err := s.store.GetItemsByOwner(ctx, ownerID, size, from/size*size)
	if err != nil {
		return nil, err
	}

	details := make([]ItemDetails, 0, len(items))
	for _, item := range items {
		d, err := s.details(ctx, item)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

// Search matches available items by name or description. Blank text returns
// an empty result without touching the store.
func (s *ItemService) Search(ctx context.Context, text string, from, size int) ([]models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []models.Item{}, nil
	}
	if from < 0 || size <= 0 {
		return nil, BadRequestError("invalid pagination: from=%d size=%d", from, size)
	}
	return s.store.SearchItems(ctx, text, size, from/size*size)
}

// AddComment lets a user comment on an item they had an approved booking of
// whose window has already started.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error) {
	author, err := s.resolveUser(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetItem(ctx, itemID); errors.Is(err, database.ErrNotFound) {
		return nil, NotFoundError("item with id=%d not found", itemID)
	} else if err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return nil, BadRequestError("comment text must not be blank")
	}

	ok, err := s.bookings.HasApprovedStartedBooking(ctx, authorID, itemID, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, BadRequestError("user with id=%d has no started booking of item with id=%d", authorID, itemID)
	}

	comment := &models.Comment{
		ItemID:     itemID,
		AuthorID:   authorID,
		AuthorName: author.Name,
		Text:       text,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *ItemService) details(ctx context.Context, item models.Item) (*ItemDetails, error) {
	now := time.Now()

	last, err := s.bookings.GetLastBooking(ctx, item.ID, now)
	if err != nil {
		return nil, err
	}
	next, err := s.bookings.GetNextBooking(ctx, item.ID, now)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.GetCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	return &ItemDetails{
		Item:        item,
		LastBooking: last,
		NextBooking: next,
		Comments:    comments,
	}, nil
}
