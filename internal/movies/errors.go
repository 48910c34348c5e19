package movies

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates that no movie matches the requested IMDB id.
	ErrNotFound = errors.New("movies: movie not found")
	// ErrAlreadyExists indicates that a movie with the same IMDB id is already stored.
	ErrAlreadyExists = errors.New("movies: movie already exists")
	// ErrIntegrityConflict indicates that the store rejected a write the service
	// did not pre-check, typically a race on the IMDB id unique index.
	ErrIntegrityConflict = errors.New("movies: storage integrity conflict")
)

// ValidationError reports every rule a candidate movie violated, not just the
// first one encountered.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "movies: validation failed: " + strings.Join(e.Violations, ", ")
}

// ServiceError tags a failure with the operation code that produced it.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}
