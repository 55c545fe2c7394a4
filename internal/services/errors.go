package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials    = errors.New("invalid email/password combination")
	ErrAccountNotActivated   = errors.New("account not activated")
	ErrInvalidActivationLink = errors.New("invalid activation link")
	ErrInvalidResetLink      = errors.New("invalid password reset link")
	ErrPasswordResetExpired  = errors.New("password reset has expired")
	ErrEmailNotFound         = errors.New("email address not found")
	ErrCannotFollowSelf      = errors.New("users cannot follow themselves")
	ErrMicropostForbidden    = errors.New("micropost belongs to another user")
	ErrInvalidToken          = errors.New("invalid token")
)

// ValidationError lists the messages for every field that failed validation.
type ValidationError struct {
	Fields map[string][]string `json:"errors"`
}

// NewValidationError creates an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add records msg against field.
func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

// Empty reports whether no field failed.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s %s", f, strings.Join(e.Fields[f], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
