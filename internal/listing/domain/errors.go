package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

var (
	ErrValidation           = errors.New("invalid input")
	ErrUnsupportedMediaType = errors.New("unsupported media type: send a jpeg or png image")
	ErrRemoteCall           = errors.New("remote call failed")
	ErrNotFound             = errors.New("listing not found")
	ErrUnauthenticated      = errors.New("user is not signed in")
	ErrForbidden            = errors.New("user not authorized to perform this action")
	ErrPartialDelete        = errors.New("listing deleted but some images were not removed")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEmailTaken           = errors.New("email is already registered")
	ErrUserNotFound         = errors.New("user not found")
)

// ValidationError carries one message per rejected field.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// RemoteCallFailure wraps a collaborator error so that both ErrRemoteCall and
// the original cause stay reachable through errors.Is/As.
func RemoteCallFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrRemoteCall, err)
}

// PartialDeleteError reports the image deletions that failed after the
// listing record itself was removed.
type PartialDeleteError struct {
	ListingID string
	Failed    []string // object paths that could not be removed
	Err       error    // combined per-image errors
}

func NewPartialDeleteError(listingID string, failed []string, err error) *PartialDeleteError {
	return &PartialDeleteError{ListingID: listingID, Failed: failed, Err: err}
}

func (e *PartialDeleteError) Error() string {
	return fmt.Sprintf("listing %s deleted, %d image(s) not removed: %v", e.ListingID, len(e.Failed), e.Err)
}

func (e *PartialDeleteError) Is(target error) bool {
	return target == ErrPartialDelete
}

func (e *PartialDeleteError) Unwrap() []error {
	return multierr.Errors(e.Err)
}
