package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a transaction type, journal entry or account missing for the company.
	ErrNotFound = errors.New("accounting: not found")
	// ErrConflict indicates a duplicate key or serialization failure detected by storage.
	ErrConflict = errors.New("accounting: conflict")
	// ErrInternal marks failures inside an atomic operation; the transaction was rolled back.
	ErrInternal = errors.New("accounting: internal error")
	// ErrInvalidInput indicates a malformed request record.
	ErrInvalidInput = errors.New("accounting: invalid input")
	// ErrUnbalanced indicates debit != credit.
	ErrUnbalanced = errors.New("accounting: journal entry must balance")
	// ErrNoLineItems indicates an entry without line items.
	ErrNoLineItems = errors.New("accounting: journal entry requires line items")
)

// InternalError wraps an unexpected failure of operation Op. It matches both
// ErrInternal and its cause with errors.Is.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("accounting: %s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() []error {
	return []error{ErrInternal, e.Err}
}

// Classify passes typed domain errors through unchanged and wraps anything
// else in InternalError.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrNotFound, ErrConflict, ErrInvalidInput, ErrUnbalanced, ErrNoLineItems, ErrInternal} {
		if errors.Is(err, known) {
			return err
		}
	}
	return &InternalError{Op: op, Err: err}
}
