package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
	ErrValidation  = errors.New("invalid input")
	ErrBadURL      = errors.New("not a slack message url")
)
