package domain

import "math"

// The preference model defines, for a reward weight vector w and a feature
// difference delta = features(A) - features(B), the probability of each
// human answer. Both variants are pure functions of their inputs.
//
// Writing R = w . delta, the weak model with equivalence band band >= 0 is
//
//	P(PreferA)    = 1 / (1 + exp(band - R))
//	P(PreferB)    = 1 / (1 + exp(band + R))
//	P(AboutEqual) = (exp(2*band) - 1) / ((1 + exp(band - R)) * (1 + exp(band + R)))
//
// which sums to one, is strictly inside (0, 1) for finite R, and collapses
// to the plain sigmoid choice model at band = 0 (where AboutEqual has
// probability zero). The strict model is the noise-free limit: the answer
// is a deterministic function of sign(R), with 0.5 assigned to both
// preferences exactly on the hyperplane boundary.

// StrictProbability returns the probability of the given answer under the
// strict (hard constraint) model. AboutEqual is not a legal strict answer
// and always has probability zero.
func StrictProbability(w, delta Vector, answer Answer) float64 {
	if answer == AboutEqual {
		return 0
	}
	r := w.Dot(delta)
	switch {
	case r == 0:
		return 0.5
	case (r > 0) == (answer == PreferA):
		return 1
	default:
		return 0
	}
}

// WeakProbability returns the probability of the given answer under the
// weak (noisy choice) model with the given equivalence band.
// The band widens the region of reward differences a human reports as
// "about equal"; band = 0 disables the AboutEqual answer entirely.
func WeakProbability(w, delta Vector, answer Answer, band float64) float64 {
	r := w.Dot(delta)
	pA := 1 / (1 + math.Exp(band-r))
	pB := 1 / (1 + math.Exp(band+r))
	switch answer {
	case PreferA:
		return pA
	case PreferB:
		return pB
	case AboutEqual:
		// At band = 0 the model is the plain sigmoid choice rule and
		// AboutEqual is impossible; return exactly zero rather than the
		// float rounding noise of 1-pA-pB, so impossible evidence is
		// detectable downstream instead of silently conditioned on.
		if band == 0 {
			return 0
		}
		if rem := 1 - pA - pB; rem > 0 {
			return rem
		}
		return 0
	default:
		return 0
	}
}

// AnswerProbability dispatches to the strict or weak model based on the
// query type. The band parameter is only consulted for weak queries.
func AnswerProbability(qt QueryType, w, delta Vector, answer Answer, band float64) float64 {
	if qt == QueryStrict {
		return StrictProbability(w, delta, answer)
	}
	return WeakProbability(w, delta, answer, band)
}

// Answers returns the set of answers a human can give under the query
// type, in a fixed enumeration order used for predictive distributions.
func Answers(qt QueryType) []Answer {
	if qt == QueryWeak {
		return []Answer{PreferA, PreferB, AboutEqual}
	}
	return []Answer{PreferA, PreferB}
}
