package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/rewardlab/elicit/internal/domain"
	"github.com/rewardlab/elicit/internal/ports"
)

const candidateSchema = `
CREATE TABLE IF NOT EXISTS trajectories (
	id        TEXT PRIMARY KEY,
	features  BLOB NOT NULL
);
`

var _ ports.FeatureStore = (*CandidateDB)(nil)

// CandidateDB is the precomputed candidate trajectory database. Feature
// vectors are extracted once at preprocessing time and cached here;
// databases of several hundred thousand trajectories are expected, so the
// elicitation path loads them into memory once and samples pairs from
// there rather than round-tripping SQL per query.
type CandidateDB struct {
	db        *sql.DB
	dimension int
}

// OpenCandidateDB opens (creating if necessary) a candidate database.
// dimension is the feature dimension D every stored vector must have.
func OpenCandidateDB(path string, dimension int) (*CandidateDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open candidate db: %w", err)
	}
	if _, err := db.Exec(candidateSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate candidate db: %w", err)
	}
	return &CandidateDB{db: db, dimension: dimension}, nil
}

// Close releases the underlying database handle.
func (c *CandidateDB) Close() error { return c.db.Close() }

// Insert stores trajectories, replacing any existing rows with the same
// ID. Every feature vector is dimension-checked before anything is
// written.
func (c *CandidateDB) Insert(ctx context.Context, trajectories []domain.Trajectory) error {
	for _, t := range trajectories {
		if err := domain.CheckDimension("trajectory "+t.ID, t.Features, c.dimension); err != nil {
			return err
		}
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO trajectories (id, features) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range trajectories {
		if _, err := stmt.ExecContext(ctx, t.ID, encodeVector(t.Features)); err != nil {
			return fmt.Errorf("insert trajectory %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of stored trajectories.
func (c *CandidateDB) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trajectories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count trajectories: %w", err)
	}
	return n, nil
}

// Features implements ports.FeatureStore.
func (c *CandidateDB) Features(ctx context.Context, trajectoryID string) (domain.Vector, error) {
	var blob []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT features FROM trajectories WHERE id = ?`, trajectoryID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("trajectory %s not found", trajectoryID)
	}
	if err != nil {
		return nil, fmt.Errorf("load trajectory %s: %w", trajectoryID, err)
	}
	return decodeVector(blob)
}

// LoadAll reads every trajectory in ID order. The ordering keeps candidate
// enumeration, and therefore acquisition tie-breaking, stable across runs.
func (c *CandidateDB) LoadAll(ctx context.Context) ([]domain.Trajectory, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, features FROM trajectories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load trajectories: %w", err)
	}
	defer rows.Close()

	var out []domain.Trajectory
	for rows.Next() {
		var (
			id   string
			blob []byte
		)
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("scan trajectory: %w", err)
		}
		features, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("trajectory %s: %w", id, err)
		}
		if err := domain.CheckDimension("trajectory "+id, features, c.dimension); err != nil {
			return nil, err
		}
		out = append(out, domain.Trajectory{ID: id, Features: features})
	}
	return out, rows.Err()
}
