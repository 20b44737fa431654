// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"github.com/rewardlab/elicit/internal/domain"
)

// QueryPair is a candidate pair of trajectories an acquisition strategy
// may turn into a query.
type QueryPair struct {
	A domain.Trajectory
	B domain.Trajectory
}

// CandidateSource supplies candidate trajectory pairs from a precomputed
// finite database. Implementations typically subsample a large preprocessed
// store (up to several hundred thousand trajectories whose features were
// extracted and cached offline).
//
// The returned slice order is the tie-break order: strategies resolve
// equal scores in favor of the earliest pair.
type CandidateSource interface {
	// Pairs returns the candidate pairs for the next query.
	// An empty result is reported by strategies as ErrNoCandidates
	// rather than silently producing a null query.
	Pairs(ctx context.Context) ([]QueryPair, error)
}

// ScoreFunc scores a candidate pair under the session's acquisition
// criterion. Higher is better. Implementations must be pure so that
// optimizers can evaluate them repeatedly.
type ScoreFunc func(a, b domain.Trajectory) float64

// CandidateOptimizer searches trajectory space directly for the pair
// maximizing an acquisition score, trading per-query compute time for not
// requiring a precomputed database. Runs may be arbitrarily long; callers
// should surface that to the operator before selecting this mode.
type CandidateOptimizer interface {
	// Optimize returns the best pair found for the given score function.
	Optimize(ctx context.Context, score ScoreFunc) (QueryPair, error)
}

// FeatureStore maps a trajectory identifier to its feature vector of
// dimension D. Feature extraction itself is external; implementations only
// serve vectors cached at preprocessing time.
type FeatureStore interface {
	Features(ctx context.Context, trajectoryID string) (domain.Vector, error)
}
