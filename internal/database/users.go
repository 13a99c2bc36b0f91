package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"
)

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (name, email, created_at, updated_at) VALUES (?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query, user.Name, user.Email, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now

	return nil
}

func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, name, email, created_at, updated_at FROM users WHERE id = ?`
	var user models.User
	err := db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (db *DB) UpdateUser(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET name = ?, email = ?, updated_at = ? WHERE id = ?`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query, user.Name, user.Email, now, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	user.UpdatedAt = now
	return nil
}

func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) GetUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	query := `SELECT id, name, email, created_at, updated_at FROM users ORDER BY id LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}
