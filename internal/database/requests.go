package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"
)

func (db *DB) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	query := `INSERT INTO requests (author_id, description, created_at) VALUES (?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query, request.AuthorID, request.Description, now)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	request.ID = id
	request.CreatedAt = now

	return nil
}

func (db *DB) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	query := `SELECT id, author_id, description, created_at FROM requests WHERE id = ?`
	var r models.ItemRequest
	err := db.QueryRowContext(ctx, query, id).Scan(&r.ID, &r.AuthorID, &r.Description, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &r, nil
}

func (db *DB) queryRequests(ctx context.Context, query string, args ...any) ([]models.ItemRequest, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []models.ItemRequest
	for rows.Next() {
		var r models.ItemRequest
		if err := rows.Scan(&r.ID, &r.AuthorID, &r.Description, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate requests: %w", err)
	}
	return requests, nil
}

func (db *DB) GetRequestsByAuthor(ctx context.Context, authorID int64) ([]models.ItemRequest, error) {
	query := `SELECT id, author_id, description, created_at FROM requests WHERE author_id = ? ORDER BY created_at DESC, id DESC`
	return db.queryRequests(ctx, query, authorID)
}

// GetRequestsExcludingAuthor lists other users' requests, newest first.
func (db *DB) GetRequestsExcludingAuthor(ctx context.Context, authorID int64, limit, offset int) ([]models.ItemRequest, error) {
	query := `SELECT id, author_id, description, created_at FROM requests
              WHERE author_id != ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	return db.queryRequests(ctx, query, authorID, limit, offset)
}
