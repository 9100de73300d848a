package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvariant signals a broken storage invariant, e.g. two birthday
	// events stored for the same contact. It is a programming error rather
	// than bad input and must surface loudly instead of being auto-merged.
	ErrInvariant = errors.New("invariant violation")
)
