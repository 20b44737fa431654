package acquisition

import (
	"context"
	"fmt"

	"github.com/rewardlab/elicit/internal/domain"
	"github.com/rewardlab/elicit/internal/ports"
)

var _ ports.AcquisitionStrategy = (*VolumeStrategy)(nil)

// VolumeStrategy selects the query expected to shrink the consistent
// region of the posterior the most: it scores each pair by the expected
// fraction of the current sample weight that the answer would eliminate
// under the strict model or down-weight under the weak model, regardless
// of information-theoretic optimality.
//
// Unlike information gain the score reaches zero once no further volume
// can be removed, so this criterion can terminate even at a zero
// per-query cost.
type VolumeStrategy struct {
	cfg       StrategyConfig
	source    ports.CandidateSource
	optimizer ports.CandidateOptimizer
}

// NewVolumeStrategy creates a volume-removal strategy bound to exactly one
// candidate provider: a discrete source or a continuous optimizer.
func NewVolumeStrategy(
	cfg StrategyConfig,
	source ports.CandidateSource,
	optimizer ports.CandidateOptimizer,
) (*VolumeStrategy, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if (source == nil) == (optimizer == nil) {
		return nil, ErrNoCandidateSource
	}
	return &VolumeStrategy{cfg: cfg, source: source, optimizer: optimizer}, nil
}

// Name implements ports.AcquisitionStrategy.
func (s *VolumeStrategy) Name() string { return CriterionVolume }

// SelectQuery implements ports.AcquisitionStrategy.
func (s *VolumeStrategy) SelectQuery(ctx context.Context, belief domain.Belief) (ports.ScoredQuery, error) {
	if belief.Len() == 0 {
		return ports.ScoredQuery{}, domain.ErrEmptyBelief
	}

	score := func(p ports.QueryPair) float64 {
		return expectedVolumeRemoved(belief, p.A.Features.Sub(p.B.Features), s.cfg.QueryType, s.cfg.EquivBand)
	}

	if s.optimizer != nil {
		pair, err := s.optimizer.Optimize(ctx, func(a, b domain.Trajectory) float64 {
			return score(ports.QueryPair{A: a, B: b})
		})
		if err != nil {
			return ports.ScoredQuery{}, fmt.Errorf("continuous optimization failed: %w", err)
		}
		return ports.ScoredQuery{
			Query: domain.Query{A: pair.A, B: pair.B, Type: s.cfg.QueryType},
			Score: score(pair),
		}, nil
	}

	pairs, err := s.source.Pairs(ctx)
	if err != nil {
		return ports.ScoredQuery{}, fmt.Errorf("candidate source failed: %w", err)
	}
	if len(pairs) == 0 {
		return ports.ScoredQuery{}, ports.ErrNoCandidates
	}

	idx, best, err := bestPair(ctx, pairs, s.cfg.Workers, score)
	if err != nil {
		return ports.ScoredQuery{}, err
	}
	return ports.ScoredQuery{
		Query: domain.Query{A: pairs[idx].A, B: pairs[idx].B, Type: s.cfg.QueryType},
		Score: best,
	}, nil
}
