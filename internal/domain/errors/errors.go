package errors

import "errors"

var (
	ErrAlreadyExists   = errors.New("already exists")
	ErrNotFound        = errors.New("not found")
	ErrNoActiveSession = errors.New("no active purchase session")
	ErrUnknownAction   = errors.New("unknown order action")
	ErrUnknownStatus   = errors.New("unknown order status")
)
