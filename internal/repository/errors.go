package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist or is
	// outside the caller's tenant scope.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a conditional insert loses a uniqueness
	// race, e.g. two writers claiming the same version number.
	ErrDuplicate = errors.New("duplicate: entity already exists")

	// ErrForeignKeyViolation is returned when a foreign key constraint fails.
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
