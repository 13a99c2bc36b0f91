package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/models"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	query := `INSERT INTO comments (item_id, author_id, text, created_at) VALUES (?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query, comment.ItemID, comment.AuthorID, comment.Text, now)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	comment.ID = id
	comment.CreatedAt = now

	return nil
}

// GetCommentsByItem returns item comments with author names resolved,
// oldest first.
func (db *DB) GetCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error) {
	query := `SELECT c.id, c.item_id, c.author_id, u.name, c.text, c.created_at
              FROM comments c
              JOIN users u ON u.id = c.author_id
              WHERE c.item_id = ?
              ORDER BY c.id`
	rows, err := db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.ItemID, &c.AuthorID, &c.AuthorName, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}
