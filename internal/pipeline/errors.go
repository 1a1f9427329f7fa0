package pipeline

import (
	"context"
	"errors"
	"fmt"

	"expertise-backend/internal/form"

	"gorm.io/gorm"
)

// ValidationError rejects a submission before any side effect. It is never
// retried.
type ValidationError struct {
	Fields form.FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("submission invalid: %d field error(s)", len(e.Fields))
}

// transientError marks failures worth retrying: upload and persistence I/O.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient wraps an error as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether the failure should be retried.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// classifyPersist separates database failures worth retrying from ones that
// will fail identically on every attempt. Duplicate keys, rejected data and
// cancelled contexts are permanent; everything else (connection drops,
// timeouts, serialization aborts) is transient.
func classifyPersist(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrInvalidData) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return Transient(err)
}
