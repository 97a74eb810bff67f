package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when an optimistic version check fails.
	ErrConflict = errors.New("concurrent modification")

	// ErrAlreadyExists is returned when creating an entity whose key is taken.
	ErrAlreadyExists = errors.New("entity already exists")
)
