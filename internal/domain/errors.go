package domain

import "errors"

// Error taxonomy shared by the store, the tracker and its adapters.
// Check with errors.Is; callers wrap these with context using %w.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrInvalidLabel     = errors.New("invalid label")
	ErrInUse            = errors.New("in use")
	ErrAlreadyCompleted = errors.New("already completed")
	ErrNotCompleted     = errors.New("not completed")
)
