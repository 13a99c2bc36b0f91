package service

import (
	"context"
	"testing"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserLifecycle(t *testing.T) {
	db := setupDB(t)
	logger := zerolog.Nop()
	svc := NewUserService(db, &logger)
	ctx := context.Background()

	user, err := svc.Create(ctx, &models.User{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	_, err = svc.Create(ctx, &models.User{Name: "Copy", Email: "alice@example.com"})
	assert.True(t, IsKind(err, KindConflict))

	updated, err := svc.Update(ctx, user.ID, UserUpdate{Name: ptr("Alice B.")})
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", updated.Name)
	assert.Equal(t, "alice@example.com", updated.Email, "unset fields stay unchanged")

	got, err := svc.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", got.Name)

	all, err := svc.FindAll(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.Delete(ctx, user.ID))
	_, err = svc.FindByID(ctx, user.ID)
	assert.True(t, IsKind(err, KindNotFound))
	assert.True(t, IsKind(svc.Delete(ctx, user.ID), KindNotFound))
}

func TestUserUpdate_DuplicateEmail(t *testing.T) {
	db := setupDB(t)
	logger := zerolog.Nop()
	svc := NewUserService(db, &logger)
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.User{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	bob, err := svc.Create(ctx, &models.User{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, bob.ID, UserUpdate{Email: ptr("alice@example.com")})
	assert.True(t, IsKind(err, KindConflict))
}
