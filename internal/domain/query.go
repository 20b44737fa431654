package domain

// Trajectory identifies a candidate trajectory together with its cached
// feature vector. Trajectories are owned by the candidate provider; the
// core only ever reads the feature vector.
type Trajectory struct {
	// ID is an opaque identifier assigned by the candidate provider.
	ID string

	// Features is the trajectory's feature vector of dimension D,
	// computed once at preprocessing time by the feature store.
	Features Vector
}

// QueryType selects the likelihood model used to interpret human answers.
// It is fixed for the duration of a session and consumed by both the
// posterior sampler and the preference model.
type QueryType string

const (
	// QueryStrict treats an answer as a deterministic function of the
	// sign of the reward difference. Answers become hard constraints on
	// the posterior.
	QueryStrict QueryType = "strict"

	// QueryWeak treats an answer as a noisy observation under a graded
	// choice model, allowing inconsistent answers and an explicit
	// "about equal" response.
	QueryWeak QueryType = "weak"
)

// Valid reports whether the query type is one of the supported variants.
func (qt QueryType) Valid() bool { return qt == QueryStrict || qt == QueryWeak }

// Answer encodes the human's response to a pairwise comparison query.
type Answer int

const (
	// PreferA indicates the first trajectory was preferred.
	PreferA Answer = 1

	// PreferB indicates the second trajectory was preferred.
	PreferB Answer = -1

	// AboutEqual indicates no clear preference. Only legal for weak
	// queries.
	AboutEqual Answer = 0
)

// ValidFor reports whether the answer is legal under the given query type.
func (a Answer) ValidFor(qt QueryType) bool {
	switch a {
	case PreferA, PreferB:
		return true
	case AboutEqual:
		return qt == QueryWeak
	default:
		return false
	}
}

// Query is a single pairwise comparison shown to the human: an unordered
// pair of trajectories plus the query type governing how the answer is
// interpreted. Queries are created by the acquisition engine and destroyed
// once the answer has been recorded as a Constraint.
type Query struct {
	A    Trajectory
	B    Trajectory
	Type QueryType
}

// Normal returns the feature difference features(A) - features(B), the
// halfspace normal that the answer orients.
func (q Query) Normal() Vector { return q.A.Features.Sub(q.B.Features) }

// Constraint is the sufficient statistic extracted from an answered query:
// the signed feature difference plus the observed answer. Constraints are
// append-only and never revised.
type Constraint struct {
	// Normal is features(A) - features(B) for the answered query.
	Normal Vector

	// Answer is the recorded human response.
	Answer Answer
}

// Oriented returns the constraint normal oriented so that the preferred
// trajectory comes first: Normal for PreferA, -Normal for PreferB. An
// AboutEqual answer carries no orientation and returns Normal unchanged.
func (c Constraint) Oriented() Vector {
	if c.Answer == PreferB {
		return c.Normal.Scale(-1)
	}
	return c.Normal.Clone()
}
