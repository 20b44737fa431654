package store

import (
	"context"
	"math/rand"

	"github.com/rewardlab/elicit/internal/domain"
	"github.com/rewardlab/elicit/internal/ports"
)

var _ ports.CandidateSource = (*MemorySource)(nil)

// MemorySource serves candidate pairs from an in-memory trajectory slice.
// With a pool size of zero it enumerates every unordered pair in index
// order; otherwise it draws poolSize random pairs per call from a seeded
// stream, which is how large precomputed databases are subsampled each
// query.
type MemorySource struct {
	trajectories []domain.Trajectory
	poolSize     int
	rng          *rand.Rand
}

// NewMemorySource creates a candidate source over the given trajectories.
func NewMemorySource(trajectories []domain.Trajectory, poolSize int, seed int64) *MemorySource {
	return &MemorySource{
		trajectories: trajectories,
		poolSize:     poolSize,
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// Len returns the number of underlying trajectories.
func (s *MemorySource) Len() int { return len(s.trajectories) }

// Pairs implements ports.CandidateSource.
func (s *MemorySource) Pairs(ctx context.Context) ([]ports.QueryPair, error) {
	n := len(s.trajectories)
	if n < 2 {
		return nil, nil
	}

	if s.poolSize <= 0 {
		out := make([]ports.QueryPair, 0, n*(n-1)/2)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				out = append(out, ports.QueryPair{A: s.trajectories[i], B: s.trajectories[j]})
			}
		}
		return out, nil
	}

	out := make([]ports.QueryPair, 0, s.poolSize)
	for len(out) < s.poolSize {
		i := s.rng.Intn(n)
		j := s.rng.Intn(n)
		if i == j {
			continue
		}
		out = append(out, ports.QueryPair{A: s.trajectories[i], B: s.trajectories[j]})
	}
	return out, nil
}
