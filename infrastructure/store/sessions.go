package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rewardlab/elicit/internal/domain"
	"github.com/rewardlab/elicit/internal/ports"
)

const sessionSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	dimension     INTEGER NOT NULL,
	query_type    TEXT NOT NULL,
	criterion     TEXT NOT NULL,
	epsilon       REAL NOT NULL,
	sample_count  INTEGER NOT NULL,
	seed          INTEGER NOT NULL,
	reproducible  INTEGER NOT NULL,
	query_count   INTEGER NOT NULL,
	status        TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS constraints (
	session_id  TEXT NOT NULL,
	seq         INTEGER NOT NULL,
	normal      BLOB NOT NULL,
	answer      INTEGER NOT NULL,
	PRIMARY KEY (session_id, seq),
	FOREIGN KEY (session_id) REFERENCES sessions(id)
);

CREATE TABLE IF NOT EXISTS belief_samples (
	session_id  TEXT NOT NULL,
	seq         INTEGER NOT NULL,
	weights     BLOB NOT NULL,
	log_weight  REAL NOT NULL,
	PRIMARY KEY (session_id, seq),
	FOREIGN KEY (session_id) REFERENCES sessions(id)
);
`

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore persists session state in SQLite. Each Save replaces the
// stored record wholesale inside one transaction: the constraint history
// is small (one row per answered query) and the belief is rebuilt from
// scratch after every update anyway, so incremental writes buy nothing.
type SessionStore struct {
	db *sql.DB
}

// OpenSessionStore opens (creating if necessary) a session store at the
// given path.
func OpenSessionStore(path string) (*SessionStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	if _, err := db.Exec(sessionSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate session store: %w", err)
	}
	return &SessionStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SessionStore) Close() error { return s.db.Close() }

// Save implements ports.SessionStore.
func (s *SessionStore) Save(ctx context.Context, state *domain.SessionState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions
			(id, dimension, query_type, criterion, epsilon, sample_count,
			 seed, reproducible, query_count, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		state.ID, state.Dimension, string(state.QueryType), state.Criterion,
		state.Epsilon, state.SampleCount, state.Seed, boolToInt(state.Reproducible),
		state.QueryCount, string(state.Status),
		state.CreatedAt.UTC().Format(time.RFC3339Nano),
		state.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", state.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM constraints WHERE session_id = ?`, state.ID); err != nil {
		return fmt.Errorf("clear constraints: %w", err)
	}
	for i, c := range state.Constraints {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO constraints (session_id, seq, normal, answer) VALUES (?, ?, ?, ?)`,
			state.ID, i, encodeVector(c.Normal), int(c.Answer)); err != nil {
			return fmt.Errorf("save constraint %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM belief_samples WHERE session_id = ?`, state.ID); err != nil {
		return fmt.Errorf("clear belief: %w", err)
	}
	for i, w := range state.Belief.Samples {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO belief_samples (session_id, seq, weights, log_weight) VALUES (?, ?, ?, ?)`,
			state.ID, i, encodeVector(w), state.Belief.LogWeights[i]); err != nil {
			return fmt.Errorf("save belief sample %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Load implements ports.SessionStore.
func (s *SessionStore) Load(ctx context.Context, id string) (*domain.SessionState, error) {
	state := &domain.SessionState{ID: id}
	var (
		queryType, status, createdAt, updatedAt string
		reproducible                            int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT dimension, query_type, criterion, epsilon, sample_count,
		       seed, reproducible, query_count, status, created_at, updated_at
		FROM sessions WHERE id = ?`, id).Scan(
		&state.Dimension, &queryType, &state.Criterion, &state.Epsilon,
		&state.SampleCount, &state.Seed, &reproducible, &state.QueryCount,
		&status, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s: %w", id, ports.ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	state.QueryType = domain.QueryType(queryType)
	state.Status = domain.SessionStatus(status)
	state.Reproducible = reproducible != 0
	if state.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if state.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	if state.Constraints, err = s.loadConstraints(ctx, id); err != nil {
		return nil, err
	}
	if state.Belief, err = s.loadBelief(ctx, id); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *SessionStore) loadConstraints(ctx context.Context, id string) ([]domain.Constraint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT normal, answer FROM constraints WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load constraints: %w", err)
	}
	defer rows.Close()

	var out []domain.Constraint
	for rows.Next() {
		var (
			blob   []byte
			answer int
		)
		if err := rows.Scan(&blob, &answer); err != nil {
			return nil, fmt.Errorf("scan constraint: %w", err)
		}
		normal, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("constraint normal: %w", err)
		}
		out = append(out, domain.Constraint{Normal: normal, Answer: domain.Answer(answer)})
	}
	return out, rows.Err()
}

func (s *SessionStore) loadBelief(ctx context.Context, id string) (domain.Belief, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT weights, log_weight FROM belief_samples WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return domain.Belief{}, fmt.Errorf("load belief: %w", err)
	}
	defer rows.Close()

	var belief domain.Belief
	for rows.Next() {
		var (
			blob      []byte
			logWeight float64
		)
		if err := rows.Scan(&blob, &logWeight); err != nil {
			return domain.Belief{}, fmt.Errorf("scan belief sample: %w", err)
		}
		w, err := decodeVector(blob)
		if err != nil {
			return domain.Belief{}, fmt.Errorf("belief sample: %w", err)
		}
		belief.Samples = append(belief.Samples, w)
		belief.LogWeights = append(belief.LogWeights, logWeight)
	}
	return belief, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
