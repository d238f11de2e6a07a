package domain

import "errors"

var (
	ErrValidation = errors.New("validation failed")

	ErrUserExists   = errors.New("username already exists")
	ErrUserNotFound = errors.New("user not found")

	// ErrNoSuchUser and ErrBadPassword are internal login failure reasons.
	// Callers outside the service layer only ever see ErrInvalidCredentials.
	ErrNoSuchUser         = errors.New("no user found with this username")
	ErrBadPassword        = errors.New("incorrect password")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("access forbidden")
	ErrSessionNotFound = errors.New("session not found")

	ErrProductNotFound = errors.New("product not found")
	ErrNotOwner        = errors.New("you can only modify your own resources")
)
