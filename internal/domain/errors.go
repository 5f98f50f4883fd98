package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrNoSuchProduct is returned when a product lookup by id fails.
	// It wraps ErrNotFound so callers can match either sentinel.
	ErrNoSuchProduct = fmt.Errorf("no such product: %w", ErrNotFound)

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrIO is returned when a persistence read or write fails
	ErrIO = errors.New("i/o failure")
)
