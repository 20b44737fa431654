// Package domain contains pure, dependency-free domain models and types
// for the reward elicitation engine.
package domain

import (
	"fmt"
	"math"
)

// Vector is a real-valued vector of fixed dimension. It represents either
// a trajectory feature vector or a hypothesized reward weight vector.
// Reward weight vectors are conventionally kept at unit L2 norm because the
// preference model is invariant to reward scale.
type Vector []float64

// Clone returns an independent copy of the vector.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Dot returns the inner product of v and other.
// It panics if the dimensions differ; dimension agreement is validated
// once at session start, not per operation.
func (v Vector) Dot(other Vector) float64 {
	if len(v) != len(other) {
		panic(fmt.Sprintf("vector dimension mismatch: %d vs %d", len(v), len(other)))
	}
	var sum float64
	for i, x := range v {
		sum += x * other[i]
	}
	return sum
}

// Sub returns the element-wise difference v - other as a new vector.
// It panics if the dimensions differ.
func (v Vector) Sub(other Vector) Vector {
	if len(v) != len(other) {
		panic(fmt.Sprintf("vector dimension mismatch: %d vs %d", len(v), len(other)))
	}
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = x - other[i]
	}
	return out
}

// Scale returns v multiplied by the scalar s as a new vector.
func (v Vector) Scale(s float64) Vector {
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = x * s
	}
	return out
}

// Norm returns the L2 norm of the vector.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Normalized returns a unit-norm copy of the vector.
// A zero vector is returned unchanged; callers that require a valid
// direction must check Norm first.
func (v Vector) Normalized() Vector {
	n := v.Norm()
	if n == 0 {
		return v.Clone()
	}
	return v.Scale(1 / n)
}

// IsFinite reports whether every component is a finite number.
func (v Vector) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
