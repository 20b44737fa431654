// Package application orchestrates the elicitation session: configuration,
// the stopping rule, and the session loop state machine.
package application

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rewardlab/elicit/internal/domain"
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// Config is the session configuration, consumed once at session start.
// None of these values change mid-session; they are persisted alongside
// the session state so a resumed session sees the same settings.
type Config struct {
	// Dimension is the reward feature dimension D for the task family
	// (6 for one family, 4 for the others).
	Dimension int `yaml:"dimension" validate:"required,min=1,max=64"`

	// Criterion selects the acquisition criterion.
	Criterion string `yaml:"criterion" validate:"required,oneof=information volume random"`

	// QueryType selects the strict or weak likelihood model.
	QueryType domain.QueryType `yaml:"query_type" validate:"required,oneof=strict weak"`

	// Epsilon is the fixed per-query cost; the session continues while
	// the best acquisition score exceeds it. Information gain is
	// non-negative, so an epsilon of zero under that criterion never
	// stops on its own and the MaxQueries bound is the only terminator.
	Epsilon float64 `yaml:"epsilon" validate:"min=0"`

	// Samples is the posterior sample count M.
	Samples int `yaml:"samples" validate:"required,min=1"`

	// MaxQueries is the safety bound on session length, enforced for
	// every criterion.
	MaxQueries int `yaml:"max_queries" validate:"required,min=1"`

	// Seed makes the run reproducible. When nil a time-derived seed is
	// used and the persisted session is marked non-reproducible.
	Seed *int64 `yaml:"seed"`

	// EquivBand is the weak model's equivalence band.
	EquivBand float64 `yaml:"equiv_band" validate:"min=0"`

	// Workers bounds parallel candidate scoring; zero means one worker
	// per CPU.
	Workers int `yaml:"workers" validate:"min=0"`

	// Sampler holds the Markov chain tunables.
	Sampler SamplerConfig `yaml:"sampler"`

	// CandidateDB is the path to the precomputed trajectory database.
	CandidateDB string `yaml:"candidate_db"`

	// PoolSize is how many candidate pairs are drawn from the database
	// per query. Zero enumerates all pairs, which is only viable for
	// small databases.
	PoolSize int `yaml:"pool_size" validate:"min=0"`

	// OutputDir is where session state is persisted.
	OutputDir string `yaml:"output_dir" validate:"required"`
}

// SamplerConfig carries the chain tunables exposed in configuration files.
// Zero values fall back to the sampler defaults.
type SamplerConfig struct {
	BurnIn         int     `yaml:"burn_in" validate:"min=0"`
	Thin           int     `yaml:"thin" validate:"min=0"`
	ProposalStddev float64 `yaml:"proposal_stddev" validate:"min=0"`
}

// LoadConfig reads and validates a YAML session configuration file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}
	// A zero band gives the AboutEqual answer probability exactly zero,
	// so a weak session could collect evidence no weight vector explains.
	if c.QueryType == domain.QueryWeak && c.EquivBand <= 0 {
		return fmt.Errorf("%w: equiv_band must be positive for weak queries", domain.ErrInvalidConfiguration)
	}
	return nil
}

// Reproducible reports whether an explicit seed was supplied.
func (c *Config) Reproducible() bool { return c.Seed != nil }
