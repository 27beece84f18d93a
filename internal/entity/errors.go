package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers posts, attachments and categories that do not
	// exist (or no longer exist).
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means no identity was presented where one is
	// required; ErrForbidden means the identity lacks the rights.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ValidationError names the offending field so the client can surface it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
