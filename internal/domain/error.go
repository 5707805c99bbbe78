package domain

import "errors"

var (
	// Common domain errors
	ErrInvalidDuration    = errors.New("duration must be a positive number")
	ErrInvalidUnit        = errors.New("unit must be minutes or hours")
	ErrEmptyCode          = errors.New("code is empty")
	ErrCodeNotFound       = errors.New("code not found")
	ErrCodeSpaceExhausted = errors.New("no free code found after maximum attempts")
)
