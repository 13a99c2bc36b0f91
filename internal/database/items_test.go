package database

import (
	"context"
	"testing"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetItem(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)
	assert.NotZero(t, item.ID)

	got, err := db.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Drill", got.Name)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.True(t, got.Available)
	assert.Zero(t, got.RequestID)
}

func TestGetItemForOwner(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	stranger := createTestUser(t, db, "Stranger", "stranger@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)

	got, err := db.GetItemForOwner(ctx, item.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)

	_, err = db.GetItemForOwner(ctx, item.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateItem(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)

	item.Name = "Power drill"
	item.Available = false
	require.NoError(t, db.UpdateItem(ctx, item))

	got, err := db.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Power drill", got.Name)
	assert.False(t, got.Available)

	missing := &models.Item{ID: 9999, Name: "Ghost"}
	assert.ErrorIs(t, db.UpdateItem(ctx, missing), ErrNotFound)
}

func TestSearchItems(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	drill := createTestItem(t, db, owner.ID, "Power Drill", true)
	require.NoError(t, db.CreateItem(ctx, &models.Item{
		OwnerID: owner.ID, Name: "Saw", Description: "Cordless drill attachment", Available: true,
	}))
	// Unavailable items never match.
	require.NoError(t, db.CreateItem(ctx, &models.Item{
		OwnerID: owner.ID, Name: "Broken drill", Available: false,
	}))

	items, err := db.SearchItems(ctx, "dRiLl", 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, drill.ID, items[0].ID)
}

func TestGetItemsByOwnerAndRequest(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	author := createTestUser(t, db, "Author", "author@example.com")

	request := &models.ItemRequest{AuthorID: author.ID, Description: "need a drill"}
	require.NoError(t, db.CreateRequest(ctx, request))

	createTestItem(t, db, owner.ID, "Saw", true)
	answer := &models.Item{OwnerID: owner.ID, Name: "Drill", Available: true, RequestID: request.ID}
	require.NoError(t, db.CreateItem(ctx, answer))

	items, err := db.GetItemsByOwner(ctx, owner.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = db.GetItemsByRequest(ctx, request.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, answer.ID, items[0].ID)
	assert.Equal(t, request.ID, items[0].RequestID)
}

func TestComments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	author := createTestUser(t, db, "Commenter", "commenter@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)

	comment := &models.Comment{ItemID: item.ID, AuthorID: author.ID, Text: "works great"}
	require.NoError(t, db.CreateComment(ctx, comment))
	assert.NotZero(t, comment.ID)

	comments, err := db.GetCommentsByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "works great", comments[0].Text)
	assert.Equal(t, "Commenter", comments[0].AuthorName)
}
