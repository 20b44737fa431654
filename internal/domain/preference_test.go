package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrictProbability(t *testing.T) {
	w := Vector{1, 0, 0, 0}

	tests := []struct {
		name     string
		delta    Vector
		answer   Answer
		expected float64
	}{
		{"prefers A when reward difference positive", Vector{1, 0, 0, 0}, PreferA, 1},
		{"rejects B when reward difference positive", Vector{1, 0, 0, 0}, PreferB, 0},
		{"prefers B when reward difference negative", Vector{-1, 0, 0, 0}, PreferB, 1},
		{"rejects A when reward difference negative", Vector{-1, 0, 0, 0}, PreferA, 0},
		{"hyperplane boundary splits evenly", Vector{0, 1, 0, 0}, PreferA, 0.5},
		{"about equal is never a strict answer", Vector{1, 0, 0, 0}, AboutEqual, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, StrictProbability(w, tt.delta, tt.answer), 1e-12)
		})
	}
}

func TestWeakProbability_SumsToOne(t *testing.T) {
	w := Vector{0.5, -0.5, 0.5, -0.5}
	deltas := []Vector{
		{1, 0, 0, 0},
		{-2, 3, 0.5, 1},
		{0, 0, 0, 0},
	}
	for _, band := range []float64{0, 0.5, 1, 3} {
		for _, delta := range deltas {
			var total float64
			for _, ans := range []Answer{PreferA, PreferB, AboutEqual} {
				p := WeakProbability(w, delta, ans, band)
				assert.GreaterOrEqual(t, p, 0.0)
				assert.LessOrEqual(t, p, 1.0)
				total += p
			}
			assert.InDelta(t, 1.0, total, 1e-9)
		}
	}
}

func TestWeakProbability_StrictlyInsideUnitInterval(t *testing.T) {
	w := Vector{1, 0}
	delta := Vector{5, 0}

	for _, ans := range []Answer{PreferA, PreferB} {
		p := WeakProbability(w, delta, ans, 1.0)
		assert.Greater(t, p, 0.0)
		assert.Less(t, p, 1.0)
	}
}

func TestWeakProbability_ZeroBandDisablesAboutEqual(t *testing.T) {
	w := Vector{1, 0}
	delta := Vector{0.3, 0.1}

	// Exactly zero, not rounding noise: a zero-band AboutEqual answer is
	// impossible evidence and must be detectable as such.
	assert.Zero(t, WeakProbability(w, delta, AboutEqual, 0))

	// With no equivalence band the model reduces to the plain sigmoid
	// choice rule.
	pA := WeakProbability(w, delta, PreferA, 0)
	pB := WeakProbability(w, delta, PreferB, 0)
	assert.InDelta(t, 1.0, pA+pB, 1e-9)
	assert.Greater(t, pA, pB)
}

func TestWeakProbability_BandWidensAboutEqual(t *testing.T) {
	w := Vector{1, 0}
	delta := Vector{0.2, 0}

	narrow := WeakProbability(w, delta, AboutEqual, 0.5)
	wide := WeakProbability(w, delta, AboutEqual, 2.0)
	assert.Greater(t, wide, narrow)
}

func TestAnswerProbability_DispatchesOnQueryType(t *testing.T) {
	w := Vector{1, 0}
	delta := Vector{1, 0}

	assert.Equal(t, 1.0, AnswerProbability(QueryStrict, w, delta, PreferA, 1.0))
	weak := AnswerProbability(QueryWeak, w, delta, PreferA, 1.0)
	assert.Greater(t, weak, 0.0)
	assert.Less(t, weak, 1.0)
}

func TestAnswers(t *testing.T) {
	assert.Equal(t, []Answer{PreferA, PreferB}, Answers(QueryStrict))
	assert.Equal(t, []Answer{PreferA, PreferB, AboutEqual}, Answers(QueryWeak))
}

func TestAnswer_ValidFor(t *testing.T) {
	require.True(t, PreferA.ValidFor(QueryStrict))
	require.True(t, PreferB.ValidFor(QueryWeak))
	assert.False(t, AboutEqual.ValidFor(QueryStrict))
	assert.True(t, AboutEqual.ValidFor(QueryWeak))
	assert.False(t, Answer(7).ValidFor(QueryWeak))
}

func TestConstraint_Oriented(t *testing.T) {
	c := Constraint{Normal: Vector{1, -2}, Answer: PreferB}
	assert.Equal(t, Vector{-1, 2}, c.Oriented())

	c.Answer = PreferA
	assert.Equal(t, Vector{1, -2}, c.Oriented())
}
