// Package testutils provides shared helpers for exercising the
// elicitation engine: a simulated human answering from a known true
// reward, and synthetic candidate trajectory generation.
package testutils

import (
	"context"
	"math/rand"
	"strconv"

	"github.com/rewardlab/elicit/internal/domain"
	"github.com/rewardlab/elicit/internal/ports"
)

var _ ports.HumanInterface = (*SimulatedHuman)(nil)

// SimulatedHuman answers queries from a fixed true reward vector. Under
// the strict model the answer is the sign of the true reward difference;
// under the weak model answers are drawn from the weak choice
// probabilities with a seeded stream, modeling an inconsistent human
// reproducibly.
type SimulatedHuman struct {
	// TrueReward is the hidden reward the simulated agent answers from.
	TrueReward domain.Vector

	// EquivBand is the weak model's equivalence band.
	EquivBand float64

	// Rng drives weak-model answer noise. May be nil for strict-only use.
	Rng *rand.Rand

	// AnswerLimit, when positive, interrupts the session after that
	// many answers, for exercising the save-and-exit path.
	AnswerLimit int

	answered int
}

// Ask implements ports.HumanInterface.
func (h *SimulatedHuman) Ask(_ context.Context, query domain.Query) (domain.Answer, error) {
	if h.AnswerLimit > 0 && h.answered >= h.AnswerLimit {
		return 0, ports.ErrInterrupted
	}
	h.answered++

	r := h.TrueReward.Dot(query.Normal())
	if query.Type == domain.QueryStrict {
		if r > 0 {
			return domain.PreferA, nil
		}
		return domain.PreferB, nil
	}

	u := h.Rng.Float64()
	for _, ans := range domain.Answers(domain.QueryWeak) {
		p := domain.WeakProbability(h.TrueReward, query.Normal(), ans, h.EquivBand)
		if u < p {
			return ans, nil
		}
		u -= p
	}
	return domain.AboutEqual, nil
}

// SyntheticTrajectories generates n trajectories with unit-ball feature
// vectors of the given dimension from a seeded stream.
func SyntheticTrajectories(n, dimension int, seed int64) []domain.Trajectory {
	rng := rand.New(rand.NewSource(seed))
	out := make([]domain.Trajectory, n)
	for i := range out {
		features := make(domain.Vector, dimension)
		for j := range features {
			features[j] = rng.Float64()*2 - 1
		}
		out[i] = domain.Trajectory{ID: "traj-" + strconv.Itoa(i), Features: features}
	}
	return out
}
