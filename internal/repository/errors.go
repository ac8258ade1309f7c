package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates an entity was not located.
var ErrNotFound = errors.New("repository: not found")

// ErrInvalidArgument indicates the caller supplied unusable input.
var ErrInvalidArgument = errors.New("repository: invalid argument")

// ErrDuplicate indicates a uniqueness constraint was violated.
var ErrDuplicate = errors.New("repository: duplicate")

// DuplicateError wraps ErrDuplicate with the identity field that collided
// (username, email or cpf).
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("repository: duplicate %s", e.Field)
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicate
}
