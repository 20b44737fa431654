package domain

import "time"

// SessionStatus describes the lifecycle stage of an elicitation session.
type SessionStatus string

const (
	// SessionActive marks a session that can still accept queries.
	SessionActive SessionStatus = "active"

	// SessionInterrupted marks a session saved by the single-shot
	// interrupt path; it can be resumed.
	SessionInterrupted SessionStatus = "interrupted"

	// SessionDone marks a session terminated by the stopping rule or
	// the maximum-query bound; it is final.
	SessionDone SessionStatus = "done"
)

// SessionState is the full durable record of one human subject's
// elicitation session: the append-only constraint history, the most recent
// belief, and the configuration fixed at session start. It is persisted on
// normal completion and on interrupt so the session can resume.
type SessionState struct {
	// ID uniquely identifies the session.
	ID string

	// Dimension is the reward feature dimension D for the session's
	// task. All vectors in the session must agree with it.
	Dimension int

	// QueryType is the likelihood model fixed at session start.
	QueryType QueryType

	// Criterion names the acquisition criterion fixed at session start
	// (information, volume, or random).
	Criterion string

	// Epsilon is the fixed per-query cost the stopping rule compares
	// acquisition scores against.
	Epsilon float64

	// SampleCount is the posterior sample count M.
	SampleCount int

	// Seed is the random seed all stochastic components derive their
	// streams from. Only meaningful when Reproducible is true.
	Seed int64

	// Reproducible records whether Seed was supplied explicitly.
	// Unseeded runs are legal but must be distinguishable in persisted
	// state from reproducible ones.
	Reproducible bool

	// QueryCount is the monotonically increasing number of queries
	// asked so far.
	QueryCount int

	// Constraints is the append-only preference history.
	Constraints []Constraint

	// Belief is the most recent posterior approximation.
	Belief Belief

	// Status is the session lifecycle stage.
	Status SessionStatus

	// CreatedAt and UpdatedAt track persistence times.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppendConstraint records a new answered query. Constraints are
// append-only; nothing else mutates the history.
func (s *SessionState) AppendConstraint(c Constraint) {
	s.Constraints = append(s.Constraints, c)
}
