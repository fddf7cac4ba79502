package domain

import "errors"

var (
	// ErrInvalidCategory is returned when an item is added without a usable category.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrNotFound is returned when no item matches the requested id.
	ErrNotFound = errors.New("item not found")
	// ErrEmptyHistory is returned by undo when there is nothing to undo.
	ErrEmptyHistory = errors.New("history is empty")
	// ErrPersistence wraps backend failures. The operation had no effect.
	ErrPersistence = errors.New("persistence failure")
)
