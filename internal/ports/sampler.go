package ports

import (
	"context"

	"github.com/rewardlab/elicit/internal/domain"
)

// PosteriorSampler draws a fixed number of reward weight vector samples
// approximating p(w | constraints) under the session's query-type model.
// The prior is uniform over the unit hypersphere.
//
// Implementations must return exactly m samples whenever they return nil
// error, must be deterministic for a fixed seed and constraint history,
// and must never report samples with zero likelihood under any recorded
// constraint. A chain that cannot make progress is reported as a
// DegenerateChainError rather than silently violating that invariant.
type PosteriorSampler interface {
	// Sample rebuilds the belief from the full constraint history.
	// warmStart, when non-nil, is the previous belief used to seed the
	// chain; it may legally be inconsistent with the newest constraint.
	Sample(ctx context.Context, constraints []domain.Constraint, m int, warmStart *domain.Belief) (domain.Belief, error)
}

// ScoredQuery is the acquisition engine's output: the selected query plus
// the acquisition score it achieved, which the stopping rule compares
// against the per-query cost.
type ScoredQuery struct {
	Query domain.Query
	Score float64
}

// AcquisitionStrategy selects the next query given the current belief.
// Implementations are stateless with respect to sessions and safe for
// sequential reuse; the candidate source or optimizer is bound at
// construction time (strategy-pattern boundary, never hard-coded).
type AcquisitionStrategy interface {
	// Name returns the criterion identifier used for configuration,
	// persistence, and metrics ("information", "volume", or "random").
	Name() string

	// SelectQuery scores candidates against the belief and returns the
	// best query. It returns ErrNoCandidates when the candidate source
	// is empty.
	SelectQuery(ctx context.Context, belief domain.Belief) (ScoredQuery, error)
}
