package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrWong99/wayfarer/internal/entity"
)

// Schema is the SQL DDL for the loaded_packages table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS loaded_packages (
    run_id      TEXT NOT NULL,
    load_order  INTEGER NOT NULL,
    package_id  TEXT NOT NULL,
    origin      TEXT NOT NULL DEFAULT '',
    version     TEXT NOT NULL DEFAULT '',
    is_dynamic  BOOLEAN NOT NULL DEFAULT false,
    counts      JSONB NOT NULL DEFAULT '{}',
    loaded_at   TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (run_id, load_order)
);
CREATE INDEX IF NOT EXISTS idx_loaded_packages_package ON loaded_packages(package_id);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore keeps a provenance record of every package registration,
// grouped by run so load orders from different processes do not collide.
type PostgresStore struct {
	db    DB
	runID string
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore returns a store that writes registrations under runID.
// The caller is responsible for calling [PostgresStore.Migrate].
func NewPostgresStore(db DB, runID string) *PostgresStore {
	return &PostgresStore{db: db, runID: runID}
}

// RunID returns the run the store writes under.
func (s *PostgresStore) RunID() string { return s.runID }

// Migrate executes [Schema].
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ledger: migrate: %w", err)
	}
	return nil
}

// Save upserts pkg. A second save of the same load order replaces its
// counts.
func (s *PostgresStore) Save(ctx context.Context, pkg LoadedPackage) error {
	counts := pkg.Counts
	if counts == nil {
		counts = entity.Counts{}
	}
	countsJSON, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("ledger: marshal counts: %w", err)
	}

	const query = `
		INSERT INTO loaded_packages (
			run_id, load_order, package_id, origin, version, is_dynamic, counts, loaded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (run_id, load_order) DO UPDATE SET counts = EXCLUDED.counts`

	_, err = s.db.Exec(ctx, query,
		s.runID, int(pkg.LoadOrder), pkg.ID, pkg.Origin, pkg.Version, pkg.IsDynamic, countsJSON, pkg.LoadedAt,
	)
	if err != nil {
		return fmt.Errorf("ledger: save %q: %w", pkg.ID, err)
	}
	return nil
}

// List returns the registrations of this store's run in load order.
func (s *PostgresStore) List(ctx context.Context) ([]LoadedPackage, error) {
	const query = `
		SELECT load_order, package_id, origin, version, is_dynamic, counts, loaded_at
		FROM loaded_packages
		WHERE run_id = $1
		ORDER BY load_order`

	rows, err := s.db.Query(ctx, query, s.runID)
	if err != nil {
		return nil, fmt.Errorf("ledger: list: %w", err)
	}
	defer rows.Close()

	var out []LoadedPackage
	for rows.Next() {
		var (
			p          LoadedPackage
			order      int
			countsJSON []byte
			loadedAt   time.Time
		)
		if err := rows.Scan(&order, &p.ID, &p.Origin, &p.Version, &p.IsDynamic, &countsJSON, &loadedAt); err != nil {
			return nil, fmt.Errorf("ledger: scan: %w", err)
		}
		p.LoadOrder = LoadOrder(order)
		p.LoadedAt = loadedAt
		if err := json.Unmarshal(countsJSON, &p.Counts); err != nil {
			return nil, fmt.Errorf("ledger: unmarshal counts for %q: %w", p.ID, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: list: %w", err)
	}
	return out, nil
}
