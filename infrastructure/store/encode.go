// Package store provides SQLite-backed persistence for the elicitation
// engine: the precomputed candidate trajectory database and the durable
// session store, plus an in-memory candidate source for small sets and
// tests.
package store

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/rewardlab/elicit/internal/domain"
)

// Vectors are stored as little-endian float64 BLOBs.

func encodeVector(v domain.Vector) []byte {
	buf := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(x))
	}
	return buf
}

func decodeVector(buf []byte) (domain.Vector, error) {
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 8", len(buf))
	}
	v := make(domain.Vector, len(buf)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return v, nil
}
