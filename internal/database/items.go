package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"
)

const itemColumns = `id, owner_id, name, description, available, request_id, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*models.Item, error) {
	var item models.Item
	var requestID sql.NullInt64
	err := row.Scan(&item.ID, &item.OwnerID, &item.Name, &item.Description,
		&item.Available, &requestID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if requestID.Valid {
		item.RequestID = requestID.Int64
	}
	return &item, nil
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (owner_id, name, description, available, request_id, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		item.OwnerID, item.Name, item.Description, item.Available, nullableID(item.RequestID), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now

	return nil
}

func (db *DB) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
	item, err := scanItem(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// GetItemForOwner returns the item only when the caller owns it.
func (db *DB) GetItemForOwner(ctx context.Context, id, ownerID int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ? AND owner_id = ?`
	item, err := scanItem(db.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item for owner: %w", err)
	}
	return item, nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `UPDATE items SET name = ?, description = ?, available = ?, updated_at = ? WHERE id = ?`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query, item.Name, item.Description, item.Available, now, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	item.UpdatedAt = now
	return nil
}

func (db *DB) queryItems(ctx context.Context, query string, args ...any) ([]models.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

func (db *DB) GetItemsByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE owner_id = ? ORDER BY id LIMIT ? OFFSET ?`
	return db.queryItems(ctx, query, ownerID, limit, offset)
}

// SearchItems matches available items whose name or description contains the
// text, case-insensitively.
func (db *DB) SearchItems(ctx context.Context, text string, limit, offset int) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
              WHERE available = 1 AND (name LIKE ? COLLATE NOCASE OR description LIKE ? COLLATE NOCASE)
              ORDER BY id LIMIT ? OFFSET ?`
	pattern := "%" + text + "%"
	return db.queryItems(ctx, query, pattern, pattern, limit, offset)
}

func (db *DB) GetItemsByRequest(ctx context.Context, requestID int64) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE request_id = ? ORDER BY id`
	return db.queryItems(ctx, query, requestID)
}
