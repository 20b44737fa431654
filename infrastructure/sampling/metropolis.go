// Package sampling provides the Markov-chain posterior sampler over reward
// weight vectors for the elicitation engine.
package sampling

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rewardlab/elicit/internal/domain"
	"github.com/rewardlab/elicit/internal/ports"
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

var _ ports.PosteriorSampler = (*MetropolisSampler)(nil)

// Config controls the Metropolis–Hastings chain. The zero value is not
// usable; start from DefaultConfig and override.
type Config struct {
	// Dimension is the reward feature dimension D. Every constraint
	// normal fed to the sampler must have this dimension.
	Dimension int `yaml:"dimension" validate:"required,min=1"`

	// QueryType selects the strict or weak likelihood model.
	QueryType domain.QueryType `yaml:"query_type" validate:"required,oneof=strict weak"`

	// EquivBand is the weak model's equivalence band; ignored under the
	// strict model.
	EquivBand float64 `yaml:"equiv_band" validate:"min=0"`

	// BurnIn is the number of initial chain states discarded before
	// samples are collected.
	BurnIn int `yaml:"burn_in" validate:"min=0"`

	// Thin keeps every Thin-th post-burn-in state to reduce
	// autocorrelation.
	Thin int `yaml:"thin" validate:"required,min=1"`

	// ProposalStddev is the standard deviation of the Gaussian
	// perturbation applied before renormalizing to the unit sphere.
	ProposalStddev float64 `yaml:"proposal_stddev" validate:"required,gt=0"`

	// Seed is the base random seed. Chains for successive constraint
	// histories derive distinct deterministic streams from it.
	Seed int64 `yaml:"seed"`

	// MaxConsecutiveRejects bounds how long the chain may stall before
	// it is reported as degenerate. Only enforced once at least one
	// constraint exists; a prior-only chain accepts every proposal.
	MaxConsecutiveRejects int `yaml:"max_consecutive_rejects" validate:"required,min=1"`

	// FeasibleStartAttempts bounds the random search for a chain start
	// consistent with the strict constraint history.
	FeasibleStartAttempts int `yaml:"feasible_start_attempts" validate:"required,min=1"`
}

// DefaultConfig returns chain tunables that mix well for the task
// dimensions this engine targets (D between 4 and 6).
func DefaultConfig(dimension int, qt domain.QueryType, seed int64) Config {
	return Config{
		Dimension:             dimension,
		QueryType:             qt,
		EquivBand:             1.0,
		BurnIn:                1000,
		Thin:                  5,
		ProposalStddev:        0.15,
		Seed:                  seed,
		MaxConsecutiveRejects: 10000,
		FeasibleStartAttempts: 50000,
	}
}

// MetropolisSampler draws posterior samples with a random-walk
// Metropolis–Hastings chain over the unit hypersphere. The prior is
// uniform over directions, so the acceptance ratio reduces to the
// likelihood ratio. A rejected proposal repeats the current state, which
// guarantees exactly M output samples regardless of acceptance rate.
//
// Determinism: for a fixed seed, constraint history, and M the output is
// bit-identical across runs. Each Sample call derives its random stream
// from the seed and the constraint count, so rebuilding a belief after a
// resume reproduces the uninterrupted run.
type MetropolisSampler struct {
	cfg     Config
	metrics ports.MetricsCollector
	tracer  trace.Tracer
}

// NewMetropolisSampler creates a sampler with validated configuration.
// metrics may be nil, in which case chain statistics are discarded.
func NewMetropolisSampler(cfg Config, metrics ports.MetricsCollector) (*MetropolisSampler, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("sampler configuration validation failed: %w", err)
	}
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return &MetropolisSampler{
		cfg:     cfg,
		metrics: metrics,
		tracer:  otel.Tracer("posterior-sampler"),
	}, nil
}

// Sample implements ports.PosteriorSampler.
func (s *MetropolisSampler) Sample(
	ctx context.Context,
	constraints []domain.Constraint,
	m int,
	warmStart *domain.Belief,
) (domain.Belief, error) {
	ctx, span := s.tracer.Start(ctx, "MetropolisSampler.Sample",
		trace.WithAttributes(
			attribute.Int("sampler.constraints", len(constraints)),
			attribute.Int("sampler.samples", m),
		))
	defer span.End()

	start := time.Now()

	if m <= 0 {
		return domain.Belief{}, fmt.Errorf("sample count must be positive, got %d", m)
	}
	for i, c := range constraints {
		if err := domain.CheckDimension(fmt.Sprintf("constraint %d", i), c.Normal, s.cfg.Dimension); err != nil {
			return domain.Belief{}, err
		}
		if !c.Answer.ValidFor(s.cfg.QueryType) {
			return domain.Belief{}, fmt.Errorf("constraint %d: answer %d: %w", i, c.Answer, domain.ErrInvalidAnswer)
		}
	}

	rng := rand.New(rand.NewSource(chainSeed(s.cfg.Seed, len(constraints))))

	current, err := s.findStart(rng, constraints, warmStart)
	if err != nil {
		span.RecordError(err)
		return domain.Belief{}, err
	}
	currentLog := s.logLikelihood(current, constraints)

	belief := domain.Belief{
		Samples:    make([]domain.Vector, 0, m),
		LogWeights: make([]float64, 0, m),
	}

	var (
		proposals          int
		accepted           int
		consecutiveRejects int
	)
	total := s.cfg.BurnIn + m*s.cfg.Thin
	for i := 0; i < total; i++ {
		if i%512 == 0 && ctx.Err() != nil {
			return domain.Belief{}, ctx.Err()
		}

		candidate := s.propose(rng, current)
		candidateLog := s.logLikelihood(candidate, constraints)
		proposals++

		if acceptProposal(rng, currentLog, candidateLog) {
			current = candidate
			currentLog = candidateLog
			accepted++
			consecutiveRejects = 0
		} else {
			consecutiveRejects++
			if len(constraints) > 0 && consecutiveRejects >= s.cfg.MaxConsecutiveRejects {
				err := &ports.DegenerateChainError{
					Constraints: len(constraints),
					Proposals:   proposals,
					Accepted:    accepted,
					Reason:      "chain stalled: proposal acceptance stuck at zero",
				}
				span.RecordError(err)
				return domain.Belief{}, err
			}
		}

		if i >= s.cfg.BurnIn && (i-s.cfg.BurnIn)%s.cfg.Thin == s.cfg.Thin-1 {
			belief.Samples = append(belief.Samples, current.Clone())
			belief.LogWeights = append(belief.LogWeights, currentLog)
		}
	}

	s.metrics.RecordLatency("posterior_sample", time.Since(start), map[string]string{
		"query_type": string(s.cfg.QueryType),
	})
	s.metrics.RecordGauge("chain_acceptance_rate", float64(accepted)/float64(proposals), nil)
	span.SetAttributes(attribute.Float64("sampler.acceptance_rate", float64(accepted)/float64(proposals)))

	return belief, nil
}

// findStart locates a chain starting point with positive likelihood.
// Warm-start samples from the previous belief are tried first in order;
// they satisfy every constraint except possibly the newest one, so a scan
// is usually cheap. Random restarts cover the cold-start and
// freshly-over-constrained cases.
func (s *MetropolisSampler) findStart(
	rng *rand.Rand,
	constraints []domain.Constraint,
	warmStart *domain.Belief,
) (domain.Vector, error) {
	if warmStart != nil {
		for _, w := range warmStart.Samples {
			if len(w) == s.cfg.Dimension && !math.IsInf(s.logLikelihood(w, constraints), -1) {
				return w.Clone(), nil
			}
		}
	}
	for i := 0; i < s.cfg.FeasibleStartAttempts; i++ {
		w := randomDirection(rng, s.cfg.Dimension)
		if !math.IsInf(s.logLikelihood(w, constraints), -1) {
			return w, nil
		}
	}
	return nil, &ports.DegenerateChainError{
		Constraints: len(constraints),
		Proposals:   s.cfg.FeasibleStartAttempts,
		Accepted:    0,
		Reason:      "no weight vector consistent with the constraint history was found",
	}
}

// logLikelihood returns the unnormalized posterior log density of w.
// The uniform-sphere prior contributes a constant and is omitted.
// Strict violations yield -Inf, which the acceptance step treats as a
// hard rejection boundary.
func (s *MetropolisSampler) logLikelihood(w domain.Vector, constraints []domain.Constraint) float64 {
	var sum float64
	for _, c := range constraints {
		p := domain.AnswerProbability(s.cfg.QueryType, w, c.Normal, c.Answer, s.cfg.EquivBand)
		if p <= 0 {
			return math.Inf(-1)
		}
		sum += math.Log(p)
	}
	return sum
}

// propose perturbs the current direction with an isotropic Gaussian step
// and renormalizes to the unit sphere.
func (s *MetropolisSampler) propose(rng *rand.Rand, current domain.Vector) domain.Vector {
	out := make(domain.Vector, len(current))
	for i, x := range current {
		out[i] = x + rng.NormFloat64()*s.cfg.ProposalStddev
	}
	if out.Norm() == 0 {
		return current.Clone()
	}
	return out.Normalized()
}

// acceptProposal applies the Metropolis criterion with acceptance
// probability min(1, exp(candidateLog - currentLog)). The prior ratio is 1
// under the uniform-sphere prior, so only the likelihood ratio appears.
func acceptProposal(rng *rand.Rand, currentLog, candidateLog float64) bool {
	if math.IsInf(candidateLog, -1) {
		return false
	}
	if candidateLog >= currentLog {
		return true
	}
	return rng.Float64() < math.Exp(candidateLog-currentLog)
}

// randomDirection draws a direction uniformly from the unit hypersphere
// via normalized Gaussian components.
func randomDirection(rng *rand.Rand, dimension int) domain.Vector {
	for {
		w := make(domain.Vector, dimension)
		for i := range w {
			w[i] = rng.NormFloat64()
		}
		if w.Norm() > 0 {
			return w.Normalized()
		}
	}
}

// chainSeed derives a per-history seed so that rebuilding the belief after
// constraint k uses the same stream whether or not the session was
// interrupted in between.
func chainSeed(seed int64, constraintCount int) int64 {
	return seed + int64(constraintCount)*0x9e3779b9
}
