// Package acquisition provides the query selection strategies of the
// elicitation engine: information gain, volume removal, and a random
// baseline, each implementing ports.AcquisitionStrategy.
package acquisition

import (
	"context"
	"errors"
	"math"
	"runtime"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/rewardlab/elicit/internal/domain"
	"github.com/rewardlab/elicit/internal/ports"
)

// Criterion identifiers used for configuration, persistence, and metrics.
const (
	CriterionInformation = "information"
	CriterionVolume      = "volume"
	CriterionRandom      = "random"
)

// Common errors returned by acquisition strategies.
var (
	// ErrNoCandidateSource is returned when a strategy is constructed
	// without exactly one of a discrete source or a continuous optimizer.
	ErrNoCandidateSource = errors.New("exactly one of candidate source or optimizer must be set")

	// ErrOptimizerUnsupported is returned when a strategy that requires
	// a discrete candidate set is given only a continuous optimizer.
	ErrOptimizerUnsupported = errors.New("criterion does not support the continuous optimizer")
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// predictive accumulates, for one candidate pair, the marginal answer
// distribution over the belief samples and the mean per-sample answer
// entropy. It is the shared Monte Carlo kernel of both the information
// and volume criteria.
type predictive struct {
	// marginal[i] is the predictive probability of domain.Answers(qt)[i],
	// averaged over all belief samples.
	marginal []float64

	// meanSampleEntropy is the average entropy of the per-sample answer
	// distributions. Zero under the strict model away from the boundary.
	meanSampleEntropy float64
}

// computePredictive evaluates the preference model for every belief sample
// against the pair's feature difference.
func computePredictive(belief domain.Belief, normal domain.Vector, qt domain.QueryType, band float64) predictive {
	answers := domain.Answers(qt)
	out := predictive{marginal: make([]float64, len(answers))}
	probs := make([]float64, len(answers))
	for _, w := range belief.Samples {
		for i, ans := range answers {
			probs[i] = domain.AnswerProbability(qt, w, normal, ans, band)
			out.marginal[i] += probs[i]
		}
		out.meanSampleEntropy += entropy(probs)
	}
	m := float64(belief.Len())
	for i := range out.marginal {
		out.marginal[i] /= m
	}
	out.meanSampleEntropy /= m
	return out
}

// informationGain estimates the mutual information between the unknown
// answer and the reward weights: the entropy of the marginal predictive
// distribution minus the mean per-sample entropy. Non-negative for every
// pair and every non-degenerate belief.
func informationGain(belief domain.Belief, normal domain.Vector, qt domain.QueryType, band float64) float64 {
	p := computePredictive(belief, normal, qt, band)
	gain := entropy(p.marginal) - p.meanSampleEntropy
	// Clamp Monte Carlo jitter around zero so the stopping rule never
	// sees a spuriously negative value of information.
	if gain < 0 {
		return 0
	}
	return gain
}

// expectedVolumeRemoved estimates the expected fraction of the current
// sample weight that an answer would eliminate (strict) or down-weight
// (weak): sum over answers of P(answer) * (1 - P(answer)). A pair the
// whole belief already agrees on removes nothing and scores zero.
func expectedVolumeRemoved(belief domain.Belief, normal domain.Vector, qt domain.QueryType, band float64) float64 {
	p := computePredictive(belief, normal, qt, band)
	var score float64
	for _, q := range p.marginal {
		score += q * (1 - q)
	}
	return score
}

// entropy returns the Shannon entropy in nats of a distribution given as
// a probability slice. Zero-probability entries contribute nothing.
func entropy(probs []float64) float64 {
	var h float64
	for _, p := range probs {
		if p > 0 {
			h -= p * math.Log(p)
		}
	}
	return h
}

// bestPair scores every candidate pair and returns the index and score of
// the maximum. Scoring is embarrassingly parallel over candidates, so the
// work is chunked across workers; ties and floating-point equality resolve
// to the lowest index, which keeps the selection deterministic regardless
// of scheduling.
func bestPair(
	ctx context.Context,
	pairs []ports.QueryPair,
	workers int,
	score func(ports.QueryPair) float64,
) (int, float64, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(pairs) {
		workers = len(pairs)
	}

	type localBest struct {
		index int
		score float64
	}
	results := make([]localBest, workers)

	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(pairs) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(pairs))
		results[w] = localBest{index: -1, score: math.Inf(-1)}
		g.Go(func() error {
			best := localBest{index: -1, score: math.Inf(-1)}
			for i := lo; i < hi; i++ {
				if i%256 == 0 && ctx.Err() != nil {
					return ctx.Err()
				}
				if s := score(pairs[i]); s > best.score {
					best = localBest{index: i, score: s}
				}
			}
			results[w] = best
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}

	// Chunks are in index order, so strict improvement keeps the lowest
	// winning index.
	overall := localBest{index: -1, score: math.Inf(-1)}
	for _, r := range results {
		if r.index >= 0 && r.score > overall.score {
			overall = r
		}
	}
	return overall.index, overall.score, nil
}
