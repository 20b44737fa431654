package acquisition

import (
	"context"
	"fmt"

	"github.com/rewardlab/elicit/internal/domain"
	"github.com/rewardlab/elicit/internal/ports"
)

var _ ports.AcquisitionStrategy = (*InformationStrategy)(nil)

// StrategyConfig controls how a belief-driven strategy scores candidate
// pairs. Configuration is immutable after construction.
type StrategyConfig struct {
	// QueryType selects the likelihood model the score is computed
	// under. It must match the session's query type.
	QueryType domain.QueryType `yaml:"query_type" validate:"required,oneof=strict weak"`

	// EquivBand is the weak model's equivalence band; ignored under the
	// strict model.
	EquivBand float64 `yaml:"equiv_band" validate:"min=0"`

	// Workers bounds the parallel candidate scoring fan-out.
	// Zero means one worker per available CPU.
	Workers int `yaml:"workers" validate:"min=0"`
}

// InformationStrategy selects the query maximizing the expected reduction
// in posterior entropy, estimated by Monte Carlo over the belief samples.
// The score is the mutual information between the unknown answer and the
// reward weights, so it is non-negative for every candidate pair; with a
// zero per-query cost this criterion never stops on its own.
//
// Concurrency: stateless and safe for sequential reuse across queries.
// Candidate scoring is parallelized internally with a deterministic
// lowest-index tie-break.
type InformationStrategy struct {
	cfg       StrategyConfig
	source    ports.CandidateSource
	optimizer ports.CandidateOptimizer
}

// NewInformationStrategy creates an information-gain strategy bound to
// exactly one candidate provider: a discrete source or a continuous
// optimizer.
func NewInformationStrategy(
	cfg StrategyConfig,
	source ports.CandidateSource,
	optimizer ports.CandidateOptimizer,
) (*InformationStrategy, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if (source == nil) == (optimizer == nil) {
		return nil, ErrNoCandidateSource
	}
	return &InformationStrategy{cfg: cfg, source: source, optimizer: optimizer}, nil
}

// Name implements ports.AcquisitionStrategy.
func (s *InformationStrategy) Name() string { return CriterionInformation }

// SelectQuery implements ports.AcquisitionStrategy.
func (s *InformationStrategy) SelectQuery(ctx context.Context, belief domain.Belief) (ports.ScoredQuery, error) {
	if belief.Len() == 0 {
		return ports.ScoredQuery{}, domain.ErrEmptyBelief
	}

	score := func(p ports.QueryPair) float64 {
		return informationGain(belief, p.A.Features.Sub(p.B.Features), s.cfg.QueryType, s.cfg.EquivBand)
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
