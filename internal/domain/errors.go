package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur during elicitation operations.
var (
	// ErrInvalidQueryType indicates an unsupported query type.
	ErrInvalidQueryType = errors.New("invalid query type")

	// ErrInvalidAnswer indicates an answer that is not legal for the
	// session's query type.
	ErrInvalidAnswer = errors.New("invalid answer")

	// ErrEmptyBelief indicates an operation that requires at least one
	// posterior sample received an empty belief.
	ErrEmptyBelief = errors.New("empty belief")

	// ErrInvalidConfiguration indicates that configuration is invalid
	// or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// DimensionError reports a vector whose dimension does not match the
// session's feature dimension D. It is raised at session start and at
// ingestion boundaries, never silently corrected.
type DimensionError struct {
	// Entity names what carried the mismatched vector.
	Entity string

	// Want is the session dimension D.
	Want int

	// Got is the offending vector's dimension.
	Got int
}

// Error implements the error interface for DimensionError.
func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch for %s: want %d, got %d", e.Entity, e.Want, e.Got)
}

// NewDimensionError creates a DimensionError for the given entity.
func NewDimensionError(entity string, want, got int) *DimensionError {
	return &DimensionError{Entity: entity, Want: want, Got: got}
}

// CheckDimension validates that the vector has the expected dimension.
func CheckDimension(entity string, v Vector, want int) error {
	if len(v) != want {
		return NewDimensionError(entity, want, len(v))
	}
	return nil
}
