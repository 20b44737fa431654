package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBelief_MeanDirection(t *testing.T) {
	b := Belief{
		Samples: []Vector{
			{1, 0},
			{0, 1},
		},
		LogWeights: []float64{0, 0},
	}

	mean := b.MeanDirection()
	require.NotNil(t, mean)
	assert.InDelta(t, 1.0, mean.Norm(), 1e-12)
	assert.InDelta(t, mean[0], mean[1], 1e-12)
}

func TestBelief_MeanDirectionEmpty(t *testing.T) {
	assert.Nil(t, Belief{}.MeanDirection())
}

func TestBelief_Consistent(t *testing.T) {
	b := Belief{
		Samples:    []Vector{{1, 0}, {0.8, 0.6}},
		LogWeights: []float64{0, 0},
	}
	constraints := []Constraint{
		{Normal: Vector{1, 0}, Answer: PreferA},
	}

	assert.True(t, b.Consistent(constraints, QueryStrict, 0))

	// A sample on the wrong side of the halfspace breaks the invariant.
	b.Samples = append(b.Samples, Vector{-1, 0})
	b.LogWeights = append(b.LogWeights, 0)
	assert.False(t, b.Consistent(constraints, QueryStrict, 0))

	// The weak model tolerates the same sample as soft evidence.
	assert.True(t, b.Consistent(constraints, QueryWeak, 1.0))
}

func TestBelief_CloneIsDeep(t *testing.T) {
	b := Belief{Samples: []Vector{{1, 2}}, LogWeights: []float64{-1}}
	c := b.Clone()
	c.Samples[0][0] = 9
	c.LogWeights[0] = 0

	assert.Equal(t, Vector{1, 2}, b.Samples[0])
	assert.Equal(t, -1.0, b.LogWeights[0])
}
