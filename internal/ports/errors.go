package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors that can occur during elicitation.
var (
	// ErrNoCandidates indicates that the candidate source returned an
	// empty candidate set; the acquisition engine refuses to select a
	// null query.
	ErrNoCandidates = errors.New("no candidate pairs available")

	// ErrInterrupted indicates the human requested an interrupt while a
	// query was pending. The session loop recovers it locally via the
	// save-and-exit path; it never propagates as a failure.
	ErrInterrupted = errors.New("session interrupted")

	// ErrSessionNotFound indicates that no persisted session exists for
	// the requested ID.
	ErrSessionNotFound = errors.New("session not found")
)

// DegenerateChainError reports a Markov chain that could not make
// progress: either no feasible starting point exists under the strict
// constraint history, or the chain rejected proposals for so long that the
// returned samples would be meaningless. Callers should treat this as a
// data-quality issue requiring fewer or weaker constraints, not retry it.
type DegenerateChainError struct {
	// Constraints is the size of the constraint history being sampled.
	Constraints int

	// Proposals is the number of proposals attempted before giving up.
	Proposals int

	// Accepted is the number of accepted proposals, typically zero.
	Accepted int

	// Reason describes the specific failure mode.
	Reason string
}

// Error implements the error interface for DegenerateChainError.
func (e *DegenerateChainError) Error() string {
	return fmt.Sprintf("degenerate chain: %s (constraints=%d, proposals=%d, accepted=%d)",
		e.Reason, e.Constraints, e.Proposals, e.Accepted)
}
