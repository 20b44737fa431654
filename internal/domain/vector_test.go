package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVector_Dot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vector
		expected float64
	}{
		{
			name:     "orthogonal vectors",
			a:        Vector{1, 0, 0, 0},
			b:        Vector{0, 1, 0, 0},
			expected: 0,
		},
		{
			name:     "aligned vectors",
			a:        Vector{1, 2, 3},
			b:        Vector{1, 2, 3},
			expected: 14,
		},
		{
			name:     "opposed vectors",
			a:        Vector{1, -1},
			b:        Vector{-1, 1},
			expected: -2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.a.Dot(tt.b), 1e-12)
		})
	}
}

func TestVector_DotPanicsOnDimensionMismatch(t *testing.T) {
	assert.Panics(t, func() {
		Vector{1, 2}.Dot(Vector{1, 2, 3})
	})
}

func TestVector_Normalized(t *testing.T) {
	v := Vector{3, 4}
	n := v.Normalized()

	assert.InDelta(t, 1.0, n.Norm(), 1e-12)
	assert.InDelta(t, 0.6, n[0], 1e-12)
	assert.InDelta(t, 0.8, n[1], 1e-12)
	// The receiver is untouched.
	assert.Equal(t, Vector{3, 4}, v)
}

func TestVector_NormalizedZeroVector(t *testing.T) {
	v := Vector{0, 0, 0}
	assert.Equal(t, Vector{0, 0, 0}, v.Normalized())
}

func TestVector_Sub(t *testing.T) {
	a := Vector{1, 2, 3}
	b := Vector{3, 2, 1}
	assert.Equal(t, Vector{-2, 0, 2}, a.Sub(b))
}

func TestVector_IsFinite(t *testing.T) {
	assert.True(t, Vector{1, -2, 0.5}.IsFinite())
	assert.False(t, Vector{1, math.NaN()}.IsFinite())
	assert.False(t, Vector{math.Inf(1), 0}.IsFinite())
}

func TestVector_CloneIsIndependent(t *testing.T) {
	a := Vector{1, 2}
	b := a.Clone()
	b[0] = 9

	require.Equal(t, Vector{1, 2}, a)
	assert.Equal(t, Vector{9, 2}, b)
}

func TestCheckDimension(t *testing.T) {
	require.NoError(t, CheckDimension("reward", Vector{1, 2, 3, 4}, 4))

	err := CheckDimension("reward", Vector{1, 2, 3}, 4)
	require.Error(t, err)

	var dimErr *DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 4, dimErr.Want)
	assert.Equal(t, 3, dimErr.Got)
	assert.Contains(t, err.Error(), "reward")
}
