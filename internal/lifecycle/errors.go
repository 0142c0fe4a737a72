package lifecycle

import "errors"

var (
	// ErrValidation marks malformed caller input: missing or empty required fields.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a reference to a table, order or position that does not exist.
	ErrNotFound = errors.New("not found")
)
