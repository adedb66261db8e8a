package services

import "errors"

var (
	// ErrNotFound is returned when a referenced post, user or comment does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller may not act on the target.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalid is returned for input rejected before reaching the store.
	ErrInvalid = errors.New("invalid input")
)
