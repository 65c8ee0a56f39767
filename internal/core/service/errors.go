package service

import "errors"

var (
	ErrDuplicateUser = errors.New("username already exists")
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("not the author of this review")
)
