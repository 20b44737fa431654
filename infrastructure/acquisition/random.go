package acquisition

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rewardlab/elicit/internal/domain"
	"github.com/rewardlab/elicit/internal/ports"
)

var _ ports.AcquisitionStrategy = (*RandomStrategy)(nil)

// RandomStrategy selects a pair uniformly at random from the candidate
// set. It is the baseline criterion: selection never reads the belief's
// content, only the candidate count. After selecting, it reports the
// pair's expected volume removal as the score so the stopping rule still
// has a value of information to compare against the per-query cost.
//
// The strategy requires a discrete candidate source; there is nothing for
// a continuous optimizer to maximize.
type RandomStrategy struct {
	cfg    StrategyConfig
	source ports.CandidateSource
	rng    *rand.Rand
}

// NewRandomStrategy creates a random baseline strategy. A fixed seed makes
// the draw sequence reproducible.
func NewRandomStrategy(cfg StrategyConfig, source ports.CandidateSource, seed int64) (*RandomStrategy, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if source == nil {
		return nil, ErrOptimizerUnsupported
	}
	return &RandomStrategy{
		cfg:    cfg,
		source: source,
		rng:    rand.New(rand.NewSource(seed)),
	}, nil
}

// Name implements ports.AcquisitionStrategy.
func (s *RandomStrategy) Name() string { return CriterionRandom }

// SelectQuery implements ports.AcquisitionStrategy.
func (s *RandomStrategy) SelectQuery(ctx context.Context, belief domain.Belief) (ports.ScoredQuery, error) {
	if belief.Len() == 0 {
		return ports.ScoredQuery{}, domain.ErrEmptyBelief
	}

	pairs, err := s.source.Pairs(ctx)
	if err != nil {
		return ports.ScoredQuery{}, fmt.Errorf("candidate source failed: %w", err)
	}
	if len(pairs) == 0 {
		return ports.ScoredQuery{}, ports.ErrNoCandidates
	}

	// The draw happens before any belief evaluation so the selection
	// distribution cannot depend on the posterior.
	pair := pairs[s.rng.Intn(len(pairs))]

	return ports.ScoredQuery{
		Query: domain.Query{A: pair.A, B: pair.B, Type: s.cfg.QueryType},
		Score: expectedVolumeRemoved(belief, pair.A.Features.Sub(pair.B.Features), s.cfg.QueryType, s.cfg.EquivBand),
	}, nil
}
