package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidInput    = errors.New("invalid input")
	ErrTooManySteps    = errors.New("too many steps")
	ErrNoPlayableSteps = errors.New("no playable steps")
)
