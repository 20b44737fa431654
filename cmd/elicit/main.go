// Command elicit runs active preference-based reward learning sessions:
// it selects pairwise trajectory comparisons, collects answers from a
// human (or a simulated agent), and maintains a posterior over reward
// weight vectors until the expected value of information drops below the
// per-query cost.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rewardlab/elicit/infrastructure/acquisition"
	"github.com/rewardlab/elicit/infrastructure/middleware"
	"github.com/rewardlab/elicit/infrastructure/sampling"
	"github.com/rewardlab/elicit/infrastructure/store"
	"github.com/rewardlab/elicit/internal/application"
	"github.com/rewardlab/elicit/internal/domain"
	"github.com/rewardlab/elicit/internal/ports"
	"github.com/rewardlab/elicit/internal/testutils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "elicit",
		Short: "Active preference-based reward learning",
		Long: `elicit learns a reward function over trajectories by actively choosing
pairwise comparison queries and updating a posterior over reward weights
from the answers.`,
	}

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newSimulateCommand())
	rootCmd.AddCommand(newSeedDBCommand())
	rootCmd.AddCommand(newShowCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRunCommand() *cobra.Command {
	var (
		configPath string
		resumeID   string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an interactive elicitation session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := application.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if cfg.CandidateDB == "" {
				return fmt.Errorf("candidate_db must be set for interactive sessions")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sessions, err := openSessions(cfg)
			if err != nil {
				return err
			}
			defer sessions.Close()

			state, seed, err := loadOrCreateState(ctx, cfg, sessions, resumeID)
			if err != nil {
				return err
			}
			if !state.Reproducible {
				log.Printf("no seed supplied; this run is not reproducible")
			}

			source, err := loadCandidates(ctx, cfg, seed)
			if err != nil {
				return err
			}

			human := NewTerminalInterface(os.Stdin, os.Stdout)
			final, err := runSessionWith(ctx, cfg, state, seed, source, human, sessions)
			if err != nil {
				return err
			}
			printSummary(cmd, final)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "elicit.yaml", "Session configuration file")
	cmd.Flags().StringVar(&resumeID, "resume", "", "Resume a previously interrupted session by ID")
	return cmd
}

func newSimulateCommand() *cobra.Command {
	var (
		configPath string
		rewardSpec string
		candidates int
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay elicitation against a synthetic agent with a known reward",
		Long: `simulate answers every query from a fixed true reward vector instead of a
human, then reports how well the learned mean reward aligns with the truth.
Useful for evaluating criteria and chain tunables without a subject.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := application.LoadConfig(configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			seed := resolveSeed(cfg)
			trueReward, err := parseReward(rewardSpec, cfg.Dimension, seed)
			if err != nil {
				return err
			}

			var source *store.MemorySource
			if cfg.CandidateDB != "" {
				if source, err = loadCandidates(ctx, cfg, seed); err != nil {
					return err
				}
			} else {
				source = store.NewMemorySource(
					testutils.SyntheticTrajectories(candidates, cfg.Dimension, seed),
					cfg.PoolSize, seed+1)
			}

			sessions, err := openSessions(cfg)
			if err != nil {
				return err
			}
			defer sessions.Close()

			state := application.NewSessionState(cfg, seed)
			human := &testutils.SimulatedHuman{
				TrueReward: trueReward,
				EquivBand:  cfg.EquivBand,
				Rng:        rand.New(rand.NewSource(seed + 2)),
			}

			final, err := runSessionWith(ctx, cfg, state, seed, source, human, sessions)
			if err != nil {
				return err
			}

			printSummary(cmd, final)
			mean := final.Belief.MeanDirection()
			if mean != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "true reward:   %s\n", formatVector(trueReward))
				fmt.Fprintf(cmd.OutOrStdout(), "alignment:     %.4f\n", mean.Dot(trueReward))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "elicit.yaml", "Session configuration file")
	cmd.Flags().StringVar(&rewardSpec, "true-reward", "", "Comma-separated true reward (random unit vector when omitted)")
	cmd.Flags().IntVar(&candidates, "candidates", 200, "Synthetic trajectory count when no candidate_db is configured")
	return cmd
}

func newSeedDBCommand() *cobra.Command {
	var (
		dbPath    string
		inputPath string
		dimension int
	)
	cmd := &cobra.Command{
		Use:   "seed-db",
		Short: "Load a preprocessed trajectory feature dump into the candidate database",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(inputPath)
			if err != nil {
				return fmt.Errorf("reading %s: %w", inputPath, err)
			}
			var records []struct {
				ID       string    `json:"id"`
				Features []float64 `json:"features"`
			}
			if err := json.Unmarshal(raw, &records); err != nil {
				return fmt.Errorf("parsing %s: %w", inputPath, err)
			}

			trajectories := make([]domain.Trajectory, len(records))
			for i, r := range records {
				trajectories[i] = domain.Trajectory{ID: r.ID, Features: r.Features}
			}

			db, err := store.OpenCandidateDB(dbPath, dimension)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Insert(cmd.Context(), trajectories); err != nil {
				return err
			}
			n, err := db.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "candidate database now holds %d trajectories\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "candidates.db", "Candidate database path")
	cmd.Flags().StringVar(&inputPath, "input", "", "JSON feature dump ([{id, features}])")
	cmd.Flags().IntVar(&dimension, "dimension", 4, "Feature dimension D")
	cmd.MarkFlagRequired("input")
	return cmd
}

func newShowCommand() *cobra.Command {
	var (
		outputDir string
		sessionID string
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a persisted session's summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := store.OpenSessionStore(filepath.Join(outputDir, "sessions.db"))
			if err != nil {
				return err
			}
			defer sessions.Close()

			state, err := sessions.Load(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			printSummary(cmd, state)
			return nil
		},
	}
	cmd.Flags().StringVar(&outputDir, "output-dir", "out", "Directory holding sessions.db")
	cmd.Flags().StringVar(&sessionID, "id", "", "Session ID")
	cmd.MarkFlagRequired("id")
	return cmd
}

// runSessionWith wires the sampler, strategy, and loop, and runs the
// session to completion or interrupt.
func runSessionWith(
	ctx context.Context,
	cfg *application.Config,
	state *domain.SessionState,
	seed int64,
	source ports.CandidateSource,
	human ports.HumanInterface,
	sessions ports.SessionStore,
) (*domain.SessionState, error) {
	metrics := middleware.NewPrometheusMetrics(nil)

	sampler, err := buildSampler(cfg, seed, metrics)
	if err != nil {
		return nil, err
	}
	strategy, err := buildStrategy(cfg, source, seed, metrics)
	if err != nil {
		return nil, err
	}

	stopRule := application.StoppingRule{Epsilon: cfg.Epsilon, MaxQueries: cfg.MaxQueries}
	observer := func(queryCount int, mean domain.Vector, score float64) {
		log.Printf("query %d answered (score %.4f); current reward estimate %s",
			queryCount, score, formatVector(mean))
	}

	loop, err := application.NewLoop(state, sampler, strategy, human, sessions, stopRule, observer)
	if err != nil {
		return nil, err
	}
	return loop.Run(ctx)
}

func buildSampler(cfg *application.Config, seed int64, metrics ports.MetricsCollector) (ports.PosteriorSampler, error) {
	sc := sampling.DefaultConfig(cfg.Dimension, cfg.QueryType, seed)
	sc.EquivBand = cfg.EquivBand
	if cfg.Sampler.BurnIn > 0 {
		sc.BurnIn = cfg.Sampler.BurnIn
	}
	if cfg.Sampler.Thin > 0 {
		sc.Thin = cfg.Sampler.Thin
	}
	if cfg.Sampler.ProposalStddev > 0 {
		sc.ProposalStddev = cfg.Sampler.ProposalStddev
	}
	return sampling.NewMetropolisSampler(sc, metrics)
}

func buildStrategy(
	cfg *application.Config,
	source ports.CandidateSource,
	seed int64,
	metrics ports.MetricsCollector,
) (ports.AcquisitionStrategy, error) {
	sc := acquisition.StrategyConfig{
		QueryType: cfg.QueryType,
		EquivBand: cfg.EquivBand,
		Workers:   cfg.Workers,
	}
	var (
		strategy ports.AcquisitionStrategy
		err      error
	)
	switch cfg.Criterion {
	case acquisition.CriterionInformation:
		strategy, err = acquisition.NewInformationStrategy(sc, source, nil)
	case acquisition.CriterionVolume:
		strategy, err = acquisition.NewVolumeStrategy(sc, source, nil)
	case acquisition.CriterionRandom:
		strategy, err = acquisition.NewRandomStrategy(sc, source, seed+3)
	default:
		err = fmt.Errorf("unknown criterion %q", cfg.Criterion)
	}
	if err != nil {
		return nil, err
	}
	return acquisition.NewEngine(strategy, metrics), nil
}

func openSessions(cfg *application.Config) (*store.SessionStore, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	return store.OpenSessionStore(filepath.Join(cfg.OutputDir, "sessions.db"))
}

func loadOrCreateState(
	ctx context.Context,
	cfg *application.Config,
	sessions *store.SessionStore,
	resumeID string,
) (*domain.SessionState, int64, error) {
	if resumeID == "" {
		seed := resolveSeed(cfg)
		return application.NewSessionState(cfg, seed), seed, nil
	}
	state, err := sessions.Load(ctx, resumeID)
	if err != nil {
		return nil, 0, err
	}
	if state.Dimension != cfg.Dimension {
		return nil, 0, domain.NewDimensionError("resumed session", cfg.Dimension, state.Dimension)
	}
	// The persisted session settings win on resume, like the seed: a
	// config file edited in between must not reinterpret the recorded
	// constraint history under a different likelihood model, criterion,
	// or stopping cost.
	cfg.QueryType = state.QueryType
	cfg.Criterion = state.Criterion
	cfg.Epsilon = state.Epsilon
	cfg.Samples = state.SampleCount
	return state, state.Seed, nil
}

func loadCandidates(ctx context.Context, cfg *application.Config, seed int64) (*store.MemorySource, error) {
	db, err := store.OpenCandidateDB(cfg.CandidateDB, cfg.Dimension)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	trajectories, err := db.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return store.NewMemorySource(trajectories, cfg.PoolSize, seed+1), nil
}

func resolveSeed(cfg *application.Config) int64 {
	if cfg.Seed != nil {
		return *cfg.Seed
	}
	return time.Now().UnixNano()
}

func parseReward(spec string, dimension int, seed int64) (domain.Vector, error) {
	if spec == "" {
		rng := rand.New(rand.NewSource(seed + 4))
		v := make(domain.Vector, dimension)
		for i := range v {
			v[i] = rng.NormFloat64()
		}
		return v.Normalized(), nil
	}
	parts := strings.Split(spec, ",")
	if len(parts) != dimension {
		return nil, fmt.Errorf("true reward has %d components, task dimension is %d", len(parts), dimension)
	}
	v := make(domain.Vector, len(parts))
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing true reward component %d: %w", i, err)
		}
		v[i] = x
	}
	return v.Normalized(), nil
}

func printSummary(cmd *cobra.Command, state *domain.SessionState) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "session:       %s\n", state.ID)
	fmt.Fprintf(out, "status:        %s\n", state.Status)
	fmt.Fprintf(out, "criterion:     %s (%s queries)\n", state.Criterion, state.QueryType)
	fmt.Fprintf(out, "queries asked: %d\n", state.QueryCount)
	fmt.Fprintf(out, "reproducible:  %t (seed %d)\n", state.Reproducible, state.Seed)
	if mean := state.Belief.MeanDirection(); mean != nil {
		fmt.Fprintf(out, "mean reward:   %s\n", formatVector(mean))
	}
}

func formatVector(v domain.Vector) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'f', 4, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
