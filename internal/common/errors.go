// Package common defines shared constants and sentinel errors used across
// the rxkeeper stores, adapters and CLI. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Validation errors (missing required fields, unparseable rules or timestamps).
	ErrValidation = errors.New("validation error")
)
