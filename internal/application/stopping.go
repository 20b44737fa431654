package application

// StopReason explains why the stopping rule ended a session.
type StopReason string

const (
	// StopNone means the session should continue.
	StopNone StopReason = ""

	// StopValueOfInformation means the best achievable acquisition
	// score no longer exceeds the per-query cost.
	StopValueOfInformation StopReason = "value_of_information"

	// StopMaxQueries means the safety bound on session length was hit.
	// It terminates every criterion, including configurations such as
	// epsilon zero with information gain that would otherwise never
	// stop, and guards against volume-removal oscillation near exact
	// convergence.
	StopMaxQueries StopReason = "max_queries"
)

// StoppingRule decides whether asking another query is worth its cost.
// The rule is an optimal-stopping comparison: continue while the expected
// value of information (the best acquisition score) exceeds the fixed
// per-query cost epsilon.
type StoppingRule struct {
	// Epsilon is the fixed per-query cost.
	Epsilon float64

	// MaxQueries is the criterion-independent safety bound.
	MaxQueries int
}

// Evaluate returns the stop decision for a prospective query. bestScore is
// the acquisition score the next query would achieve; asked is the number
// of queries already answered.
//
// Information gain is non-negative, so with Epsilon == 0 this rule only
// ever stops through MaxQueries under that criterion; volume removal and
// random can reach a zero score and stop on their own.
func (r StoppingRule) Evaluate(bestScore float64, asked int) StopReason {
	if asked >= r.MaxQueries {
		return StopMaxQueries
	}
	if bestScore <= r.Epsilon {
		return StopValueOfInformation
	}
	return StopNone
}
