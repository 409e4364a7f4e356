package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/eslam-allam/cult-beauty/internal/catalog"
)

const schema = `
CREATE TABLE IF NOT EXISTS extraction_runs (
	id UUID PRIMARY KEY,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	categories INT NOT NULL,
	row_count INT NOT NULL,
	columns TEXT[] NOT NULL
);

CREATE TABLE IF NOT EXISTS catalog_rows (
	run_id UUID NOT NULL REFERENCES extraction_runs(id) ON DELETE CASCADE,
	position INT NOT NULL,
	fields JSONB NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

// CatalogStore persists reconciled catalog snapshots, one run at a time.
type CatalogStore struct {
	db *DB
}

func NewCatalogStore(db *DB) *CatalogStore {
	return &CatalogStore{db: db}
}

func (s *CatalogStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return nil
}

// SaveRun writes a full snapshot and returns the run ID.
func (s *CatalogStore) SaveRun(ctx context.Context, t *catalog.Table, categories int, startedAt time.Time) (string, error) {
	runID := uuid.NewString()

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO extraction_runs (id, started_at, finished_at, categories, row_count, columns)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			runID, startedAt, time.Now().UTC(), categories, t.Len(), t.Columns())
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		for i, rec := range t.Rows() {
			fields := make(map[string]string, rec.Len())
			for _, key := range rec.Keys() {
				fields[key] = rec.Value(key)
			}
			_, err := tx.Exec(ctx,
				`INSERT INTO catalog_rows (run_id, position, fields) VALUES ($1, $2, $3)`,
				runID, i, fields)
			if err != nil {
				return fmt.Errorf("failed to insert row %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return runID, nil
}

// LoadRun reads back a snapshot in row order.
func (s *CatalogStore) LoadRun(ctx context.Context, runID string) (*catalog.Table, error) {
	var columns []string
	err := s.db.pool.QueryRow(ctx,
		`SELECT columns FROM extraction_runs WHERE id = $1`, runID).Scan(&columns)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}

	rows, err := s.db.pool.Query(ctx,
		`SELECT fields FROM catalog_rows WHERE run_id = $1 ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	t := catalog.NewTable()
	for rows.Next() {
		var fields map[string]string
		if err := rows.Scan(&fields); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rec := catalog.NewRecord()
		for _, key := range columns {
			if value, ok := fields[key]; ok {
				rec.Set(key, value)
			}
		}
		t.Append(rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	t.SetColumns(columns)
	return t, nil
}
