package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewardlab/elicit/infrastructure/store"
	"github.com/rewardlab/elicit/internal/application"
	"github.com/rewardlab/elicit/internal/domain"
	"github.com/rewardlab/elicit/internal/ports"
)

func testSessions(t *testing.T) *store.SessionStore {
	t.Helper()
	sessions, err := store.OpenSessionStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sessions.Close() })
	return sessions
}

func TestLoadOrCreateState_Fresh(t *testing.T) {
	seed := int64(5)
	cfg := &application.Config{
		Dimension: 4, Criterion: "information", QueryType: domain.QueryStrict,
		Samples: 20, MaxQueries: 10, Seed: &seed, OutputDir: "out",
	}

	state, effective, err := loadOrCreateState(context.Background(), cfg, testSessions(t), "")
	require.NoError(t, err)

	assert.Equal(t, int64(5), effective)
	assert.Equal(t, int64(5), state.Seed)
	assert.True(t, state.Reproducible)
	assert.Zero(t, state.QueryCount)
}

// TestLoadOrCreateState_ResumeRestoresSessionSettings covers the resume
// guarantee: the persisted query type, criterion, epsilon, sample count,
// and seed all win over a config file edited since the session started,
// so the recorded constraint history is never reinterpreted under a
// different likelihood model or stopping cost.
func TestLoadOrCreateState_ResumeRestoresSessionSettings(t *testing.T) {
	ctx := context.Background()
	sessions := testSessions(t)

	persisted := &domain.SessionState{
		ID:           "resume-me",
		Dimension:    4,
		QueryType:    domain.QueryStrict,
		Criterion:    "information",
		Epsilon:      0.05,
		SampleCount:  100,
		Seed:         42,
		Reproducible: true,
		QueryCount:   3,
		Status:       domain.SessionInterrupted,
	}
	require.NoError(t, sessions.Save(ctx, persisted))

	// The config file has since been edited to disagree on everything
	// the session record carries.
	otherSeed := int64(999)
	cfg := &application.Config{
		Dimension: 4, Criterion: "volume", QueryType: domain.QueryWeak,
		Epsilon: 0.5, Samples: 7, MaxQueries: 10, Seed: &otherSeed,
		EquivBand: 1.0, OutputDir: "out",
	}

	state, effective, err := loadOrCreateState(ctx, cfg, sessions, "resume-me")
	require.NoError(t, err)

	assert.Equal(t, int64(42), effective)
	assert.Equal(t, 3, state.QueryCount)
	assert.Equal(t, domain.QueryStrict, cfg.QueryType)
	assert.Equal(t, "information", cfg.Criterion)
	assert.Equal(t, 0.05, cfg.Epsilon)
	assert.Equal(t, 100, cfg.Samples)
}

func TestLoadOrCreateState_ResumeErrors(t *testing.T) {
	ctx := context.Background()
	sessions := testSessions(t)

	cfg := &application.Config{
		Dimension: 4, Criterion: "information", QueryType: domain.QueryStrict,
		Samples: 20, MaxQueries: 10, OutputDir: "out",
	}

	t.Run("unknown session", func(t *testing.T) {
		_, _, err := loadOrCreateState(ctx, cfg, sessions, "missing")
		assert.ErrorIs(t, err, ports.ErrSessionNotFound)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		require.NoError(t, sessions.Save(ctx, &domain.SessionState{
			ID: "wrong-dim", Dimension: 6, QueryType: domain.QueryStrict,
			Criterion: "information", SampleCount: 20, Seed: 1,
			Status: domain.SessionInterrupted,
		}))

		_, _, err := loadOrCreateState(ctx, cfg, sessions, "wrong-dim")
		var dimErr *domain.DimensionError
		require.ErrorAs(t, err, &dimErr)
	})
}

func TestParseReward(t *testing.T) {
	t.Run("explicit components are normalized", func(t *testing.T) {
		v, err := parseReward("3, 0, 4, 0", 4, 1)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, v.Norm(), 1e-12)
		assert.InDelta(t, 0.6, v[0], 1e-12)
		assert.InDelta(t, 0.8, v[2], 1e-12)
	})

	t.Run("empty draws a seeded unit vector", func(t *testing.T) {
		first, err := parseReward("", 4, 7)
		require.NoError(t, err)
		second, err := parseReward("", 4, 7)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.InDelta(t, 1.0, first.Norm(), 1e-12)
	})

	t.Run("component count must match dimension", func(t *testing.T) {
		_, err := parseReward("1,2", 4, 1)
		assert.Error(t, err)
	})

	t.Run("non-numeric component", func(t *testing.T) {
		_, err := parseReward("1,x,3,4", 4, 1)
		assert.Error(t, err)
	})
}
