package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports an operation on a rule id that is not in the table.
	ErrNotFound = errors.New("not found")
	// ErrInvalidPayload reports an ingestion body that does not match the expected shape.
	ErrInvalidPayload = errors.New("invalid payload")
)

// RuleNotFound wraps ErrNotFound with the offending id.
func RuleNotFound(id int64) error {
	return fmt.Errorf("rule %w: id %d", ErrNotFound, id)
}

// IsNotFound checks if err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidPayload checks if err is (or wraps) ErrInvalidPayload.
func IsInvalidPayload(err error) bool {
	return errors.Is(err, ErrInvalidPayload)
}
