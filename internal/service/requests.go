package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// RequestStore is the persistence port of the item-request board.
type RequestStore interface {
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByAuthor(ctx context.Context, authorID int64) ([]models.ItemRequest, error)
	GetRequestsExcludingAuthor(ctx context.Context, authorID int64, limit, offset int) ([]models.ItemRequest, error)
	GetItemsByRequest(ctx context.Context, requestID int64) ([]models.Item, error)
}

type RequestService struct {
	store  RequestStore
	users  UserDirectory
	logger *zerolog.Logger
}

func NewRequestService(store RequestStore, users UserDirectory, logger *zerolog.Logger) *RequestService {
	return &RequestService{store: store, users: users, logger: logger}
}

func (s *RequestService) resolveUser(ctx context.Context, id int64) error {
	_, err := s.users.GetUser(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return NotFoundError("user with id=%d not found", id)
	}
	if err != nil {
		return fmt.Errorf("resolve user %d: %w", id, err)
	}
	return nil
}

func (s *RequestService) Create(ctx context.Context, authorID int64, description string) (*models.ItemRequest, error) {
	if err := s.resolveUser(ctx, authorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, BadRequestError("request description must not be blank")
	}

	request := &models.ItemRequest{AuthorID: authorID, Description: description}
	if err := s.store.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// FindAllByAuthor lists the caller's requests, newest first, with the items
// created in answer to each.
func (s *RequestService) FindAllByAuthor(ctx context.Context, authorID int64) ([]models.ItemRequest, error) {
	if err := s.resolveUser(ctx, authorID); err != nil {
		return nil, err
	}

	requests, err := s.store.GetRequestsByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

// FindAllOthers lists other users' requests, newest first.
func (s *RequestService) FindAllOthers(ctx context.Context, userID int64, from, size int) ([]models.ItemRequest, error) {
	if err := s.resolveUser(ctx, userID); err != nil {
		return nil, err
	}
	if from < 0 || size <= 0 {
		return nil, BadRequestError("invalid pagination: from=%d size=%d", from, size)
	}

	requests, err := s.store.GetRequestsExcludingAuthor(ctx, userID, size, from/size*size)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

func (s *RequestService) FindByID(ctx context.Context, userID, requestID int64) (*models.ItemRequest, error) {
	if err := s.resolveUser(ctx, userID); err != nil {
		return nil, err
	}

	request, err := s.store.GetRequest(ctx, requestID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFoundError("request with id=%d not found", requestID)
	}
	if err != nil {
		return nil, err
	}

	attached, err := s.attachItems(ctx, []models.ItemRequest{*request})
	if err != nil {
		return nil, err
	}
	return &attached[0], nil
}

func (s *RequestService) attachItems(ctx context.Context, requests []models.ItemRequest) ([]models.ItemRequest, error) {
	for i := range requests {
		items, err := s.store.GetItemsByRequest(ctx, requests[i].ID)
		if err != nil {
			return nil, err
		}
		requests[i].Items = items
	}
	return requests, nil
}
