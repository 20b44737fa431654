package domain

// Belief approximates the posterior distribution over reward weight
// vectors given all constraints recorded so far. It is an ordered sequence
// of unit-norm samples with unnormalized log weights, rebuilt by fresh
// chain sampling after every new constraint.
type Belief struct {
	// Samples holds the posterior weight vector samples in chain order.
	Samples []Vector

	// LogWeights holds the unnormalized log likelihood of each sample
	// under the constraint history. Same length and order as Samples.
	LogWeights []float64
}

// Len returns the number of samples in the belief.
func (b Belief) Len() int { return len(b.Samples) }

// Clone returns a deep copy of the belief.
func (b Belief) Clone() Belief {
	out := Belief{
		Samples:    make([]Vector, len(b.Samples)),
		LogWeights: make([]float64, len(b.LogWeights)),
	}
	for i, s := range b.Samples {
		out.Samples[i] = s.Clone()
	}
	copy(out.LogWeights, b.LogWeights)
	return out
}

// MeanDirection returns the unit-norm mean of the belief samples, the
// running estimate of the learned reward. This is a read-only projection
// for observational output; it is not part of the session's own state.
// It returns nil for an empty belief.
func (b Belief) MeanDirection() Vector {
	if len(b.Samples) == 0 {
		return nil
	}
	mean := make(Vector, len(b.Samples[0]))
	for _, s := range b.Samples {
		for i, x := range s {
			mean[i] += x
		}
	}
	return mean.Scale(1 / float64(len(b.Samples))).Normalized()
}

// Consistent reports whether every sample has positive likelihood under
// every given constraint for the session's query-type model. This is the
// core belief invariant: a sampler must never report samples that violate
// recorded evidence.
func (b Belief) Consistent(constraints []Constraint, qt QueryType, band float64) bool {
	for _, s := range b.Samples {
		for _, c := range constraints {
			if AnswerProbability(qt, s, c.Normal, c.Answer, band) <= 0 {
				return false
			}
		}
	}
	return true
}
