package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/travelguider/internal/itinerary"
	"github.com/neexbeast/travelguider/internal/storage"
)

// ---- mock Querier ----

type mockQuerier struct {
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	execFn     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.queryRowFn(ctx, sql, args...)
}
func (m *mockQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return m.queryFn(ctx, sql, args...)
}
func (m *mockQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return m.execFn(ctx, sql, args...)
}

// ---- mock pgx.Row ----

type fakeRow struct {
	scanFn func(dest ...any) error
}

func (f *fakeRow) Scan(dest ...any) error { return f.scanFn(dest...) }

// ---- mock pgx.Rows ----

type fakeRows struct {
	rows    [][]any
	idx     int
	rowErr  error
	scanErr error
}

func (f *fakeRows) Next() bool                                   { f.idx++; return f.idx <= len(f.rows) }
func (f *fakeRows) Err() error                                   { return f.rowErr }
func (f *fakeRows) Close()                                       {}
func (f *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (f *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (f *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (f *fakeRows) RawValues() [][]byte                          { return nil }
func (f *fakeRows) Conn() *pgx.Conn                              { return nil }

func (f *fakeRows) Scan(dest ...any) error {
	if f.scanErr != nil {
		return f.scanErr
	}
	return assign(f.rows[f.idx-1], dest)
}

// assign copies a row of plain values into Scan destinations.
func assign(row []any, dest []any) error {
	for i, d := range dest {
		if i >= len(row) {
			break
		}
		switch v := d.(type) {
		case *uuid.UUID:
			*v = row[i].(uuid.UUID)
		case *string:
			*v = row[i].(string)
		case *[]byte:
			*v = row[i].([]byte)
		case *time.Time:
			*v = row[i].(time.Time)
		default:
			return fmt.Errorf("unsupported scan destination %T", d)
		}
	}
	return nil
}

// ---- mock MigrationPool ----

type mockMigrationPool struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockMigrationPool) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.beginFn(ctx)
}

// mockTx is a minimal pgx.Tx implementation for testing migrations.
type mockTx struct {
	execFn     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
}

func (t *mockTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.execFn(ctx, sql, args...)
}
func (t *mockTx) Commit(ctx context.Context) error   { return t.commitFn(ctx) }
func (t *mockTx) Rollback(ctx context.Context) error { return t.rollbackFn(ctx) }

func (t *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (t *mockTx) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *mockTx) SendBatch(_ context.Context, _ *pgx.Batch) pgx.BatchResults { return nil }
func (t *mockTx) LargeObjects() pgx.LargeObjects                             { return pgx.LargeObjects{} }
func (t *mockTx) Prepare(_ context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *mockTx) Conn() *pgx.Conn { return nil }

// ---- helpers ----

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func sampleItinerary() itinerary.Itinerary {
	return itinerary.Itinerary{
		Title:     "Southern Coast",
		TotalDays: 1,
		Days: []itinerary.Day{{
			Number: 1,
			Visits: []itinerary.Visit{{Order: 1, Name: "Galle Fort", Price: 500, DurationHours: 2, Contact: "N/A"}},
		}},
	}
}

func savedRow(t *testing.T, id uuid.UUID, owner string, created time.Time) []any {
	it := sampleItinerary()
	return []any{
		id, owner, it.Title,
		mustJSON(t, itinerary.TripRequest{Title: it.Title, TotalDays: 1}),
		mustJSON(t, it),
		mustJSON(t, itinerary.Summarize(it)),
		created,
	}
}

func healthyTx(exec func(sql string)) *mockTx {
	return &mockTx{
		execFn: func(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
			if exec != nil {
				exec(sql)
			}
			return pgconn.CommandTag{}, nil
		},
		commitFn:   func(_ context.Context) error { return nil },
		rollbackFn: func(_ context.Context) error { return nil },
	}
}

// ---- Save ----

func TestSave_AssignsIDAndTitle(t *testing.T) {
	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	var gotArgs []any

	q := &mockQuerier{
		queryRowFn: func(_ context.Context, sql string, args ...any) pgx.Row {
			assert.Contains(t, sql, "INSERT INTO saved_itineraries")
			gotArgs = args
			return &fakeRow{scanFn: func(dest ...any) error {
				*dest[0].(*time.Time) = created
				return nil
			}}
		},
	}

	it := sampleItinerary()
	saved, err := storage.NewRepositoryWithQuerier(q).Save(context.Background(), storage.SavedItinerary{
		Owner:     " alice ",
		Itinerary: it,
		Summary:   itinerary.Summarize(it),
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.Equal(t, "alice", saved.Owner)
	assert.Equal(t, "Southern Coast", saved.Title)
	assert.Equal(t, created, saved.CreatedAt)

	require.Len(t, gotArgs, 6)
	assert.Equal(t, saved.ID, gotArgs[0])
	assert.JSONEq(t, string(mustJSON(t, it)), string(gotArgs[4].([]byte)))
}

func TestSave_RequiresOwner(t *testing.T) {
	repo := storage.NewRepositoryWithQuerier(&mockQuerier{})
	_, err := repo.Save(context.Background(), storage.SavedItinerary{Owner: "  "})
	require.Error(t, err)
}

func TestSave_DBError(t *testing.T) {
	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
			return &fakeRow{scanFn: func(_ ...any) error { return fmt.Errorf("connection refused") }}
		},
	}
	_, err := storage.NewRepositoryWithQuerier(q).Save(context.Background(), storage.SavedItinerary{Owner: "alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inserting itinerary")
}

// ---- Get ----

func TestGet_Found(t *testing.T) {
	id := uuid.New()
	created := time.Now().UTC().Truncate(time.Second)
	row := savedRow(t, id, "alice", created)

	q := &mockQuerier{
		queryRowFn: func(_ context.Context, sql string, args ...any) pgx.Row {
			assert.Contains(t, sql, "WHERE id = $1")
			assert.Equal(t, id, args[0])
			return &fakeRow{scanFn: func(dest ...any) error { return assign(row, dest) }}
		},
	}

	s, err := storage.NewRepositoryWithQuerier(q).Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, s.ID)
	assert.Equal(t, "alice", s.Owner)
	require.Len(t, s.Itinerary.Days, 1)
	assert.Equal(t, "Galle Fort", s.Itinerary.Days[0].Visits[0].Name)
	assert.Equal(t, 500.0, s.Summary.TotalBudget)
	assert.Equal(t, created, s.CreatedAt)
}

func TestGet_NotFound(t *testing.T) {
	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
			return &fakeRow{scanFn: func(_ ...any) error { return pgx.ErrNoRows }}
		},
	}
	_, err := storage.NewRepositoryWithQuerier(q).Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGet_BadJSON(t *testing.T) {
	row := savedRow(t, uuid.New(), "alice", time.Now())
	row[4] = []byte("not-json")
	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
			return &fakeRow{scanFn: func(dest ...any) error { return assign(row, dest) }}
		},
	}
	_, err := storage.NewRepositoryWithQuerier(q).Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshaling")
}

// ---- lists ----

func TestListByOwner(t *testing.T) {
	now := time.Now()
	rows := &fakeRows{rows: [][]any{
		savedRow(t, uuid.New(), "alice", now),
		savedRow(t, uuid.New(), "alice", now.Add(-time.Hour)),
	}}
	q := &mockQuerier{
		queryFn: func(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
			assert.Contains(t, sql, "ORDER BY created_at DESC")
			assert.Equal(t, "alice", args[0])
			return rows, nil
		},
	}

	list, err := storage.NewRepositoryWithQuerier(q).ListByOwner(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestListByOwner_Empty(t *testing.T) {
	q := &mockQuerier{
		queryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) { return &fakeRows{}, nil },
	}
	list, err := storage.NewRepositoryWithQuerier(q).ListByOwner(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestListByOwner_QueryError(t *testing.T) {
	q := &mockQuerier{
		queryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
			return nil, fmt.Errorf("db down")
		},
	}
	_, err := storage.NewRepositoryWithQuerier(q).ListByOwner(context.Background(), "alice")
	require.Error(t, err)
}

func TestListByOwner_ScanError(t *testing.T) {
	rows := &fakeRows{rows: [][]any{{}}, scanErr: fmt.Errorf("scan failed")}
	q := &mockQuerier{
		queryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) { return rows, nil },
	}
	_, err := storage.NewRepositoryWithQuerier(q).ListByOwner(context.Background(), "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scanning")
}

func TestListByOwner_RowsErr(t *testing.T) {
	rows := &fakeRows{rowErr: fmt.Errorf("rows iteration error")}
	q := &mockQuerier{
		queryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) { return rows, nil },
	}
	_, err := storage.NewRepositoryWithQuerier(q).ListByOwner(context.Background(), "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iterating")
}

func TestListContainingPlace_UsesContainment(t *testing.T) {
	var filter string
	q := &mockQuerier{
		queryFn: func(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
			assert.Contains(t, sql, "itinerary @> $2::jsonb")
			filter = args[1].(string)
			return &fakeRows{rows: [][]any{savedRow(t, uuid.New(), "alice", time.Now())}}, nil
		},
	}

	list, err := storage.NewRepositoryWithQuerier(q).ListContainingPlace(context.Background(), "alice", "Galle Fort")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.JSONEq(t, `{"days":[{"places":[{"name":"Galle Fort"}]}]}`, filter)
}

// ---- Delete ----

func TestDelete(t *testing.T) {
	id := uuid.New()
	q := &mockQuerier{
		execFn: func(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			assert.True(t, strings.HasPrefix(sql, "DELETE FROM saved_itineraries"))
			assert.Equal(t, id, args[0])
			return pgconn.NewCommandTag("DELETE 1"), nil
		},
	}
	require.NoError(t, storage.NewRepositoryWithQuerier(q).Delete(context.Background(), id))
}

func TestDelete_NotFound(t *testing.T) {
	q := &mockQuerier{
		execFn: func(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 0"), nil
		},
	}
	err := storage.NewRepositoryWithQuerier(q).Delete(context.Background(), uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDelete_DBError(t *testing.T) {
	q := &mockQuerier{
		execFn: func(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, errors.New("db down")
		},
	}
	err := storage.NewRepositoryWithQuerier(q).Delete(context.Background(), uuid.New())
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}

// ---- NewRepository ----

func TestNewRepository_NotNil(t *testing.T) {
	repo := storage.NewRepository(nil)
	assert.NotNil(t, repo)
}

// ---- RunMigrations tests ----

func TestMigrations_Embedded(t *testing.T) {
	names, err := fs.Glob(storage.Migrations(), "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	sql, err := fs.ReadFile(storage.Migrations(), names[0])
	require.NoError(t, err)
	assert.Contains(t, string(sql), "saved_itineraries")
}

func TestRunMigrations_EmbeddedSchema(t *testing.T) {
	var executed []string
	pool := &mockMigrationPool{
		beginFn: func(_ context.Context) (pgx.Tx, error) {
			return healthyTx(func(sql string) { executed = append(executed, sql) }), nil
		},
	}
	require.NoError(t, storage.RunMigrations(context.Background(), pool, storage.Migrations()))
	require.NotEmpty(t, executed)
	assert.Contains(t, executed[0], "CREATE TABLE IF NOT EXISTS saved_itineraries")
}

func TestRunMigrations_EmptyFS(t *testing.T) {
	err := storage.RunMigrations(context.Background(), nil, fstest.MapFS{})
	require.NoError(t, err)
}

func TestRunMigrations_SkipsNonSQL(t *testing.T) {
	fsys := fstest.MapFS{
		"README.md":   {Data: []byte("docs")},
		"001_a.sql":   {Data: []byte("SELECT 1;")},
		"sub/002.sql": {Data: []byte("SELECT 2;")},
	}
	var executed []string
	pool := &mockMigrationPool{
		beginFn: func(_ context.Context) (pgx.Tx, error) {
			return healthyTx(func(sql string) { executed = append(executed, sql) }), nil
		},
	}
	require.NoError(t, storage.RunMigrations(context.Background(), pool, fsys))
	assert.Equal(t, []string{"SELECT 1;"}, executed)
}

func TestRunMigrations_BeginError(t *testing.T) {
	fsys := fstest.MapFS{"001_test.sql": {Data: []byte("SELECT 1;")}}
	pool := &mockMigrationPool{
		beginFn: func(_ context.Context) (pgx.Tx, error) { return nil, fmt.Errorf("cannot begin") },
	}

	err := storage.RunMigrations(context.Background(), pool, fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executing migration")
}

func TestRunMigrations_ExecErrorRollsBack(t *testing.T) {
	fsys := fstest.MapFS{"001_test.sql": {Data: []byte("INVALID SQL;")}}
	rolledBack := false
	tx := &mockTx{
		execFn: func(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, fmt.Errorf("syntax error")
		},
		commitFn:   func(_ context.Context) error { return nil },
		rollbackFn: func(_ context.Context) error { rolledBack = true; return nil },
	}
	pool := &mockMigrationPool{
		beginFn: func(_ context.Context) (pgx.Tx, error) { return tx, nil },
	}

	err := storage.RunMigrations(context.Background(), pool, fsys)
	require.Error(t, err)
	assert.True(t, rolledBack)
}

func TestRunMigrations_CommitError(t *testing.T) {
	fsys := fstest.MapFS{"001_test.sql": {Data: []byte("SELECT 1;")}}
	tx := healthyTx(nil)
	tx.commitFn = func(_ context.Context) error { return fmt.Errorf("commit failed") }
	pool := &mockMigrationPool{
		beginFn: func(_ context.Context) (pgx.Tx, error) { return tx, nil },
	}

	err := storage.RunMigrations(context.Background(), pool, fsys)
	require.Error(t, err)
}

func TestRunMigrations_SortsFilesLexicographically(t *testing.T) {
	fsys := fstest.MapFS{
		"003_c.sql": {Data: []byte("SELECT 3;")},
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"002_b.sql": {Data: []byte("SELECT 2;")},
	}
	var order []string
	pool := &mockMigrationPool{
		beginFn: func(_ context.Context) (pgx.Tx, error) {
			return healthyTx(func(sql string) { order = append(order, sql) }), nil
		},
	}

	require.NoError(t, storage.RunMigrations(context.Background(), pool, fsys))
	assert.Equal(t, []string{"SELECT 1;", "SELECT 2;", "SELECT 3;"}, order)
}

// ---- Connect tests ----

func TestConnect_BadURL(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := storage.Connect(ctx, "postgres://invalid-host-xyz:5432/db?sslmode=disable")
	require.Error(t, err)
}
