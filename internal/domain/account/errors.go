package account

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrMissingField          = errors.New("missing field")
	ErrNoActiveSubscription  = errors.New("no active subscription")
	ErrQuotaExceeded         = errors.New("daily ad quota exceeded")
	ErrCorruptPersistedState = errors.New("corrupt persisted state")

	ErrNoSession      = errors.New("no session")
	ErrRecordNotFound = errors.New("snapshot not found")
	ErrNotSettleable  = errors.New("transaction cannot be settled")
)

// FieldError names the empty field. It unwraps to ErrMissingField.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("missing field: %s", e.Field)
}

func (e *FieldError) Unwrap() error {
	return ErrMissingField
}

func missing(field string) error {
	return &FieldError{Field: field}
}
