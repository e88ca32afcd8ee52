package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotAuthorized      = errors.New("authorization required")
	ErrForbidden          = errors.New("operation not permitted")
	ErrPostNotFound       = errors.New("post not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrPublishingDisabled = errors.New("publishing is disabled for regular users")
	ErrAlreadyVoted       = errors.New("vote with the same value already recorded")
	ErrVoteConflict       = errors.New("vote changed concurrently")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError collects every invalid field of a request.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates an empty collector.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add records a problem for field. The first message per field wins.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, exists := e.Fields[field]; exists {
		return
	}
	e.Fields[field] = message
}

// Err returns nil when nothing was recorded.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func fieldError(field, message string) error {
	verr := NewValidationError()
	verr.Add(field, message)
	return verr
}
