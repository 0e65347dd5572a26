package domain

import (
	"errors"
	"fmt"
)

// Domain errors for checklist sessions.
var (
	// ErrNotFound indicates a storage key has no value.
	ErrNotFound = errors.New("not found")

	// ErrNoDefinition indicates the checklist definition is not available.
	ErrNoDefinition = errors.New("checklist definition not loaded")

	// ErrUnknownItem indicates an item code that the definition does not contain.
	ErrUnknownItem = errors.New("unknown checklist item")

	// ErrUnknownSection indicates a section id that the definition does not contain.
	ErrUnknownSection = errors.New("unknown checklist section")

	// ErrInvalidChoice indicates a choice that is not offered to the active role.
	ErrInvalidChoice = errors.New("invalid choice for role")
)

// DefinitionError wraps a failed definition load with the location it came from.
type DefinitionError struct {
	Location string
	Err      error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("failed to load checklist definition from %s: %v", e.Location, e.Err)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNoDefinition) match any failed definition load.
func (e *DefinitionError) Is(target error) bool {
	return target == ErrNoDefinition
}
