package service

import (
	"context"
	"errors"
	"strings"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// UserStore is the persistence port of the identity directory.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	GetUsers(ctx context.Context, limit, offset int) ([]models.User, error)
}

// UserUpdate carries a partial user update; nil fields stay unchanged.
type UserUpdate struct {
	Name  *string
	Email *string
}

type UserService struct {
	store  UserStore
	logger *zerolog.Logger
}

func NewUserService(store UserStore, logger *zerolog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

func (s *UserService) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if strings.TrimSpace(user.Email) == "" {
		return nil, BadRequestError("user email must not be blank")
	}

	err := s.store.CreateUser(ctx, user)
	if errors.Is(err, database.ErrDuplicate) {
		return nil, ConflictError("email %s is already in use", user.Email)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id int64, update UserUpdate) (*models.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Email != nil {
		user.Email = *update.Email
	}

	err = s.store.UpdateUser(ctx, user)
	if errors.Is(err, database.ErrDuplicate) {
		return nil, ConflictError("email %s is already in use", user.Email)
	}
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFoundError("user with id=%d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) FindByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFoundError("user with id=%d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) FindAll(ctx context.Context, from, size int) ([]models.User, error) {
	if from < 0 || size <= 0 {
		return nil, BadRequestError("invalid pagination: from=%d size=%d", from, size)
	}
	return s.store.GetUsers(ctx, size, from/size*size)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := s.store.DeleteUser(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return NotFoundError("user with id=%d not found", id)
	}
	return err
}
