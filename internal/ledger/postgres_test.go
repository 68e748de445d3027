package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrWong99/wayfarer/internal/entity"
)

// ---------------------------------------------------------------------------
// Test helpers: mock DB types
// ---------------------------------------------------------------------------

// mockRows implements pgx.Rows for testing.
type mockRows struct {
	data   [][]any
	idx    int
	err    error
	closed bool
}

func (r *mockRows) Close()                                       { r.closed = true }
func (r *mockRows) Err() error                                   { return r.err }
func (r *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *mockRows) RawValues() [][]byte                          { return nil }
func (r *mockRows) Conn() *pgx.Conn                              { return nil }
func (r *mockRows) Values() ([]any, error)                       { return nil, nil }

func (r *mockRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *mockRows) Scan(dest ...any) error {
	row := r.data[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: expected %d columns, got %d destinations", len(row), len(dest))
	}
	for i, v := range row {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *int:
			*d = v.(int)
		case *bool:
			*d = v.(bool)
		case *[]byte:
			*d = v.([]byte)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return fmt.Errorf("scan: unsupported type at index %d: %T", i, dest[i])
		}
	}
	return nil
}

// mockDB implements the DB interface for testing.
type mockDB struct {
	queryFunc func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	execFunc  func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (m *mockDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, sql, args...)
	}
	return &mockRows{}, nil
}

func (m *mockDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.execFunc != nil {
		return m.execFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

// ---------------------------------------------------------------------------
// PostgresStore tests
// ---------------------------------------------------------------------------

func TestPostgresStore_Migrate(t *testing.T) {
	t.Parallel()

	var gotSQL string
	db := &mockDB{execFunc: func(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
		gotSQL = sql
		return pgconn.CommandTag{}, nil
	}}
	if err := NewPostgresStore(db, "run-1").Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if !strings.Contains(gotSQL, "CREATE TABLE IF NOT EXISTS loaded_packages") {
		t.Errorf("Migrate SQL = %q", gotSQL)
	}

	failing := &mockDB{execFunc: func(context.Context, string, ...any) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, errors.New("permission denied")
	}}
	if err := NewPostgresStore(failing, "run-1").Migrate(context.Background()); err == nil || !strings.Contains(err.Error(), "ledger: migrate") {
		t.Errorf("Migrate error = %v", err)
	}
}

func TestPostgresStore_Save(t *testing.T) {
	t.Parallel()

	var args []any
	db := &mockDB{execFunc: func(_ context.Context, sql string, a ...any) (pgconn.CommandTag, error) {
		if !strings.Contains(sql, "ON CONFLICT (run_id, load_order)") {
			t.Errorf("Save SQL missing upsert: %q", sql)
		}
		args = a
		return pgconn.CommandTag{}, nil
	}}

	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	err := NewPostgresStore(db, "run-1").Save(context.Background(), LoadedPackage{
		ID:        "core",
		Origin:    "content/01_core.json",
		Version:   "1.2.0",
		LoadOrder: 3,
		LoadedAt:  at,
		Counts:    entity.Counts{entity.KindVenue: 2},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(args) != 8 || args[0] != "run-1" || args[1] != 3 || args[2] != "core" {
		t.Fatalf("args = %v", args)
	}
	var counts map[string]int
	if err := json.Unmarshal(args[6].([]byte), &counts); err != nil || counts["venue"] != 2 {
		t.Errorf("counts arg = %s (%v)", args[6], err)
	}
}

func TestPostgresStore_List(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := &mockRows{data: [][]any{
		{1, "core", "01_core.json", "1.0.0", false, []byte(`{"venue":2}`), at},
		{2, "scene_1", "placement", "", true, []byte(`{}`), at},
	}}
	db := &mockDB{queryFunc: func(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
		if args[0] != "run-1" {
			t.Errorf("run id arg = %v", args[0])
		}
		return rows, nil
	}}

	got, err := NewPostgresStore(db, "run-1").List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != "core" || got[0].Counts[entity.KindVenue] != 2 || !got[1].IsDynamic || got[1].LoadOrder != 2 {
		t.Errorf("List = %+v", got)
	}
	if !rows.closed {
		t.Error("rows not closed")
	}
}

func TestPostgresStore_ListQueryError(t *testing.T) {
	t.Parallel()

	db := &mockDB{queryFunc: func(context.Context, string, ...any) (pgx.Rows, error) {
		return nil, errors.New("connection refused")
	}}
	if _, err := NewPostgresStore(db, "run-1").List(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
