package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur during scoring operations.
var (
	// ErrInvalidInput indicates that a required input was empty or
	// semantically unusable (e.g. an unknown scenario id).
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownScenario indicates that a negotiation scenario id does not
	// match any configured scenario.
	ErrUnknownScenario = errors.New("unknown scenario")

	// ErrInvalidConfiguration indicates that a ruleset, weight map, or
	// pattern table is invalid. Configuration errors are detected at
	// table-load time and are fatal; the engine cannot start with an
	// invalid configuration.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrEmptyValue indicates that a required value is empty or nil.
	ErrEmptyValue = errors.New("empty value")
)

// ValidationError aggregates one or more validation failures for a named
// entity, typically a ruleset section being loaded.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// Unwrap marks every ValidationError as a configuration error.
func (e *ValidationError) Unwrap() error { return ErrInvalidConfiguration }

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}

// PartialFailure records a single item in a batch that could not be
// scored fully and received a documented neutral fallback instead. Batch
// results carry these so fallbacks are reported, never silent.
type PartialFailure struct {
	// ItemID identifies the failed item (candidate id, bullet index).
	ItemID string `json:"item_id"`

	// Reason describes why the item fell back.
	Reason string `json:"reason"`
}
