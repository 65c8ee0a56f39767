package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup by key matches no record
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint
	ErrDuplicate = errors.New("duplicate key")
)
