package service

import (
	"errors"
	"fmt"

	"rawda/internal/corpus"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrNoChapters is returned when a document exists but has no sections.
	ErrNoChapters = errors.New("document has no chapters")
	// ErrExternalService is returned when the content source fails or serves
	// unreadable documents.
	ErrExternalService = errors.New("external service error")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}


// corpusError maps a corpus failure onto the service taxonomy, keeping the
// original error in the chain.
func corpusError(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, corpus.ErrInvalidName):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, corpus.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, corpus.ErrParse), errors.Is(err, corpus.ErrManifestUnavailable):
		return WrapError(fmt.Errorf("%w: %w", ErrExternalService, err), msg)
	default:
		return WrapError(err, msg)
	}
}
