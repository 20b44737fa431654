package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rewardlab/elicit/internal/domain"
	"github.com/rewardlab/elicit/internal/ports"
)

// Phase is a state of the session loop state machine.
type Phase string

const (
	// PhaseInit loads or creates the session state and draws the
	// initial belief from the prior.
	PhaseInit Phase = "init"

	// PhaseAwaitingAnswer has a selected query outstanding and blocks
	// on the human.
	PhaseAwaitingAnswer Phase = "awaiting_answer"

	// PhaseUpdatingBelief appends the newest constraint and rebuilds
	// the posterior.
	PhaseUpdatingBelief Phase = "updating_belief"

	// PhaseDone is terminal.
	PhaseDone Phase = "done"
)

// ProgressFunc receives the read-only projection of the belief published
// after every update: the query count, the running mean reward direction,
// and the acquisition score of the answered query. It is observational
// output, decoupled from the loop's internal state.
type ProgressFunc func(queryCount int, meanReward domain.Vector, score float64)

// Loop is the single-threaded elicitation session orchestrator:
// posterior sampler -> acquisition engine -> human -> posterior update ->
// stopping rule, with durable persistence on completion and on interrupt.
type Loop struct {
	sampler  ports.PosteriorSampler
	strategy ports.AcquisitionStrategy
	human    ports.HumanInterface
	store    ports.SessionStore
	stop     StoppingRule
	samples  int
	observer ProgressFunc

	state *domain.SessionState
	phase Phase
	saved bool
}

// NewSessionState builds a fresh session record from configuration.
// The effective seed must be resolved by the caller (explicit or
// time-derived) so that it can also parameterize the sampler and
// strategies.
func NewSessionState(cfg *Config, seed int64) *domain.SessionState {
	now := time.Now().UTC()
	return &domain.SessionState{
		ID:           uuid.NewString(),
		Dimension:    cfg.Dimension,
		QueryType:    cfg.QueryType,
		Criterion:    cfg.Criterion,
		Epsilon:      cfg.Epsilon,
		SampleCount:  cfg.Samples,
		Seed:         seed,
		Reproducible: cfg.Reproducible(),
		Status:       domain.SessionActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewLoop wires a session loop. observer may be nil.
func NewLoop(
	state *domain.SessionState,
	sampler ports.PosteriorSampler,
	strategy ports.AcquisitionStrategy,
	human ports.HumanInterface,
	store ports.SessionStore,
	stop StoppingRule,
	observer ProgressFunc,
) (*Loop, error) {
	if state == nil {
		return nil, errors.New("session state must not be nil")
	}
	if state.SampleCount <= 0 {
		return nil, fmt.Errorf("session sample count must be positive, got %d", state.SampleCount)
	}
	if observer == nil {
		observer = func(int, domain.Vector, float64) {}
	}
	return &Loop{
		sampler:  sampler,
		strategy: strategy,
		human:    human,
		store:    store,
		stop:     stop,
		samples:  state.SampleCount,
		observer: observer,
		state:    state,
		phase:    PhaseInit,
	}, nil
}

// Phase returns the loop's current state-machine phase.
func (l *Loop) Phase() Phase { return l.phase }

// Run drives the session to completion or interrupt and returns the final
// state. An interrupt (ports.ErrInterrupted from the human, or context
// cancellation) is recovered locally: the state is persisted once and
// returned with SessionInterrupted status and a nil error. Repeated
// interrupt signals have no effect beyond the first save.
func (l *Loop) Run(ctx context.Context) (*domain.SessionState, error) {
	if err := l.init(ctx); err != nil {
		if isInterrupt(err) {
			return l.saveAndExit(ctx)
		}
		return l.state, err
	}

	for {
		l.phase = PhaseAwaitingAnswer

		selected, err := l.strategy.SelectQuery(ctx, l.state.Belief)
		if err != nil {
			if isInterrupt(err) {
				return l.saveAndExit(ctx)
			}
			return l.state, fmt.Errorf("acquisition failed: %w", err)
		}

		if reason := l.stop.Evaluate(selected.Score, l.state.QueryCount); reason != StopNone {
			return l.finish(ctx, reason)
		}

		answer, err := l.human.Ask(ctx, selected.Query)
		if err != nil {
			if isInterrupt(err) {
				return l.saveAndExit(ctx)
			}
			return l.state, fmt.Errorf("human interface failed: %w", err)
		}
		if !answer.ValidFor(l.state.QueryType) {
			return l.state, fmt.Errorf("answer %d for %s query: %w", answer, l.state.QueryType, domain.ErrInvalidAnswer)
		}

		l.phase = PhaseUpdatingBelief
		l.state.QueryCount++
		l.state.AppendConstraint(domain.Constraint{
			Normal: selected.Query.Normal(),
			Answer: answer,
		})

		previous := l.state.Belief
		belief, err := l.sampler.Sample(ctx, l.state.Constraints, l.samples, &previous)
		if err != nil {
			if isInterrupt(err) {
				return l.saveAndExit(ctx)
			}
			// Persist the history before surfacing chain failures so a
			// degenerate session remains diagnosable from storage. A
			// failed diagnostic save must be visible too, not swallowed
			// by the chain error.
			updateErr := fmt.Errorf("posterior update failed: %w", err)
			if perr := l.persist(ctx, domain.SessionInterrupted); perr != nil {
				return l.state, errors.Join(updateErr, fmt.Errorf("persisting session history: %w", perr))
			}
			return l.state, updateErr
		}
		l.state.Belief = belief

		l.observer(l.state.QueryCount, belief.MeanDirection(), selected.Score)
	}
}

// init validates the loaded state and draws the initial belief from the
// prior when the session is fresh. Dimension mismatches fail fast here,
// before any query is asked.
func (l *Loop) init(ctx context.Context) error {
	for i, c := range l.state.Constraints {
		if err := domain.CheckDimension(fmt.Sprintf("constraint %d", i), c.Normal, l.state.Dimension); err != nil {
			return err
		}
	}
	for i, w := range l.state.Belief.Samples {
		if err := domain.CheckDimension(fmt.Sprintf("belief sample %d", i), w, l.state.Dimension); err != nil {
			return err
		}
	}

	if l.state.Belief.Len() == 0 {
		belief, err := l.sampler.Sample(ctx, l.state.Constraints, l.samples, nil)
		if err != nil {
			return fmt.Errorf("initial belief: %w", err)
		}
		l.state.Belief = belief
	}
	l.state.Status = domain.SessionActive
	return nil
}

// finish persists the completed session.
func (l *Loop) finish(ctx context.Context, reason StopReason) (*domain.SessionState, error) {
	l.phase = PhaseDone
	if err := l.persist(ctx, domain.SessionDone); err != nil {
		return l.state, fmt.Errorf("persisting finished session (stop reason %s): %w", reason, err)
	}
	return l.state, nil
}

// saveAndExit is the single-shot interrupt path. The save uses a context
// detached from cancellation so that the interrupt that triggered the exit
// cannot also abort the write.
func (l *Loop) saveAndExit(ctx context.Context) (*domain.SessionState, error) {
	l.phase = PhaseDone
	if err := l.persist(context.WithoutCancel(ctx), domain.SessionInterrupted); err != nil {
		return l.state, fmt.Errorf("persisting interrupted session: %w", err)
	}
	return l.state, nil
}

// persist saves the session state at most once per terminal transition.
func (l *Loop) persist(ctx context.Context, status domain.SessionStatus) error {
	if l.saved {
		return nil
	}
	l.saved = true
	l.state.Status = status
	l.state.UpdatedAt = time.Now().UTC()
	return l.store.Save(ctx, l.state)
}

func isInterrupt(err error) bool {
	return errors.Is(err, ports.ErrInterrupted) || errors.Is(err, context.Canceled)
}
