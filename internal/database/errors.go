package database

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert or update violates a
	// uniqueness constraint.
	ErrDuplicate = errors.New("record already exists")

	// ErrConcurrentModification is returned when a conditional update
	// matched no rows because another writer got there first.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
