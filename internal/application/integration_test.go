package application_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewardlab/elicit/infrastructure/acquisition"
	"github.com/rewardlab/elicit/infrastructure/sampling"
	"github.com/rewardlab/elicit/infrastructure/store"
	"github.com/rewardlab/elicit/internal/application"
	"github.com/rewardlab/elicit/internal/domain"
	"github.com/rewardlab/elicit/internal/testutils"
)

const (
	integrationDim     = 3
	integrationSeed    = int64(1234)
	integrationSamples = 60
)

func integrationSampler(t *testing.T) *sampling.MetropolisSampler {
	t.Helper()
	cfg := sampling.DefaultConfig(integrationDim, domain.QueryStrict, integrationSeed)
	cfg.BurnIn = 200
	cfg.Thin = 2
	sampler, err := sampling.NewMetropolisSampler(cfg, nil)
	require.NoError(t, err)
	return sampler
}

func integrationStrategy(t *testing.T, source *store.MemorySource) *acquisition.InformationStrategy {
	t.Helper()
	strategy, err := acquisition.NewInformationStrategy(acquisition.StrategyConfig{
		QueryType: domain.QueryStrict,
		Workers:   2,
	}, source, nil)
	require.NoError(t, err)
	return strategy
}

func integrationState(t *testing.T, maxQueries int) *domain.SessionState {
	t.Helper()
	seed := integrationSeed
	cfg := &application.Config{
		Dimension:  integrationDim,
		Criterion:  "information",
		QueryType:  domain.QueryStrict,
		Epsilon:    0,
		Samples:    integrationSamples,
		MaxQueries: maxQueries,
		Seed:       &seed,
		OutputDir:  t.TempDir(),
	}
	require.NoError(t, cfg.Validate())
	return application.NewSessionState(cfg, seed)
}

func openStore(t *testing.T) *store.SessionStore {
	t.Helper()
	sessions, err := store.OpenSessionStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sessions.Close() })
	return sessions
}

// TestSession_EndToEnd drives a full simulated session: real sampler, real
// acquisition over an in-memory candidate set, simulated human, SQLite
// persistence.
func TestSession_EndToEnd(t *testing.T) {
	trueReward := domain.Vector{0.8, -0.5, 0.3}.Normalized()
	trajectories := testutils.SyntheticTrajectories(6, integrationDim, integrationSeed+1)
	source := store.NewMemorySource(trajectories, 0, integrationSeed+1)
	human := &testutils.SimulatedHuman{TrueReward: trueReward}
	sessions := openStore(t)

	state := integrationState(t, 5)
	loop, err := application.NewLoop(state, integrationSampler(t), integrationStrategy(t, source),
		human, sessions, application.StoppingRule{Epsilon: 0, MaxQueries: 5}, nil)
	require.NoError(t, err)

	final, err := loop.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.SessionDone, final.Status)
	assert.LessOrEqual(t, final.QueryCount, 5)
	assert.Len(t, final.Constraints, final.QueryCount)
	require.Equal(t, integrationSamples, final.Belief.Len())
	assert.True(t, final.Belief.Consistent(final.Constraints, domain.QueryStrict, 0))

	// After several informative queries the belief should lean toward the
	// simulated human's true reward.
	mean := final.Belief.MeanDirection()
	require.NotNil(t, mean)
	assert.Greater(t, mean.Dot(trueReward), 0.0)

	// The completed session round-trips through storage.
	loaded, err := sessions.Load(context.Background(), final.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionDone, loaded.Status)
	assert.Equal(t, final.QueryCount, loaded.QueryCount)
	assert.Equal(t, final.Constraints, loaded.Constraints)
	assert.Equal(t, final.Belief, loaded.Belief)
}

// TestSession_InterruptAndResume checks the resume guarantee: a session
// interrupted mid-way and resumed from storage reproduces the exact belief
// an uninterrupted run would have reached.
func TestSession_InterruptAndResume(t *testing.T) {
	trueReward := domain.Vector{0.2, 0.9, -0.4}.Normalized()
	trajectories := testutils.SyntheticTrajectories(5, integrationDim, integrationSeed+2)
	const maxQueries = 4
	rule := application.StoppingRule{Epsilon: 0, MaxQueries: maxQueries}

	newSource := func() *store.MemorySource {
		return store.NewMemorySource(trajectories, 0, integrationSeed+2)
	}

	// Reference run: no interruption.
	reference := integrationState(t, maxQueries)
	loop, err := application.NewLoop(reference, integrationSampler(t), integrationStrategy(t, newSource()),
		&testutils.SimulatedHuman{TrueReward: trueReward}, openStore(t), rule, nil)
	require.NoError(t, err)
	expected, err := loop.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.SessionDone, expected.Status)
	require.Equal(t, maxQueries, expected.QueryCount)

	// Interrupted run: the human walks away after two answers.
	sessions := openStore(t)
	state := integrationState(t, maxQueries)
	loop, err = application.NewLoop(state, integrationSampler(t), integrationStrategy(t, newSource()),
		&testutils.SimulatedHuman{TrueReward: trueReward, AnswerLimit: 2}, sessions, rule, nil)
	require.NoError(t, err)
	interrupted, err := loop.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.SessionInterrupted, interrupted.Status)
	require.Equal(t, 2, interrupted.QueryCount)

	// Resume from storage and run to completion.
	resumed, err := sessions.Load(context.Background(), interrupted.ID)
	require.NoError(t, err)
	loop, err = application.NewLoop(resumed, integrationSampler(t), integrationStrategy(t, newSource()),
		&testutils.SimulatedHuman{TrueReward: trueReward}, sessions, rule, nil)
	require.NoError(t, err)
	final, err := loop.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.SessionDone, final.Status)
	assert.Equal(t, maxQueries, final.QueryCount)
	assert.Equal(t, expected.Constraints, final.Constraints)
	assert.Equal(t, expected.Belief, final.Belief, "resumed run must be bit-identical to the uninterrupted run")
}

// TestSession_HighEpsilonStopsBeforeAsking verifies optimal stopping on a
// tiny candidate set: when the per-query cost exceeds any achievable score,
// the session completes without asking anything.
func TestSession_HighEpsilonStopsBeforeAsking(t *testing.T) {
	trajectories := testutils.SyntheticTrajectories(2, integrationDim, integrationSeed+3)
	source := store.NewMemorySource(trajectories, 0, integrationSeed+3)
	sessions := openStore(t)

	state := integrationState(t, 10)
	state.Epsilon = 10

	human := &testutils.SimulatedHuman{TrueReward: domain.Vector{1, 0, 0}}
	loop, err := application.NewLoop(state, integrationSampler(t), integrationStrategy(t, source),
		human, sessions, application.StoppingRule{Epsilon: 10, MaxQueries: 10}, nil)
	require.NoError(t, err)

	final, err := loop.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.SessionDone, final.Status)
	assert.Zero(t, final.QueryCount)
	assert.Empty(t, final.Constraints)
	require.Equal(t, integrationSamples, final.Belief.Len())
}
