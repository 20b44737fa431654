package ports

import (
	"context"

	"github.com/rewardlab/elicit/internal/domain"
)

// HumanInterface presents a query to the human and returns their answer.
// Rendering of the two trajectories is the implementation's concern; the
// core only consumes the resulting answer.
//
// An interrupt from the human (quit request, closed input) is reported as
// ErrInterrupted so the session loop can take its single-shot
// save-and-exit path; it is never treated as a failure.
type HumanInterface interface {
	Ask(ctx context.Context, query domain.Query) (domain.Answer, error)
}

// SessionStore persists session state durably so that an interrupted
// session can resume with an identical belief and history.
type SessionStore interface {
	// Save writes the complete session state, replacing any previously
	// stored state for the same session ID.
	Save(ctx context.Context, state *domain.SessionState) error

	// Load retrieves a session by ID. It returns ErrSessionNotFound if
	// no such session was persisted.
	Load(ctx context.Context, id string) (*domain.SessionState, error)
}
