package repositories

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateEmail indicates another user already owns the email address.
	ErrDuplicateEmail = errors.New("repository: email already taken")
)
