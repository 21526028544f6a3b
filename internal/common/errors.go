// Package common defines sentinel errors shared across the client layers.
// Callers should match them with errors.Is.
package common

import "errors"

var (
	// ErrNotFound reports that a record with the requested id does not exist
	// in the place that was asked (local storage, the remote API, memory).
	ErrNotFound = errors.New("not found")

	// ErrValidation marks user input that failed form validation.
	ErrValidation = errors.New("validation error")

	// ErrNotLocal is returned when a mutation targets a record that was not
	// created locally. Remote records are read-only.
	ErrNotLocal = errors.New("only locally created characters can be changed")
)
