package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/rxkeeper/internal/migrations"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T) *SQLStorage {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "rxkeeper.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_RoundTripAndReplace(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	got, err := s.ReadCollection(ctx, "tasks")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.WriteCollection(ctx, "tasks", []json.RawMessage{
		json.RawMessage(`{"id":"b"}`),
		json.RawMessage(`{"id":"a"}`),
	}))
	got, err = s.ReadCollection(ctx, "tasks")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.JSONEq(t, `{"id":"b"}`, string(got[0]))
	assert.JSONEq(t, `{"id":"a"}`, string(got[1]))

	// replacing shrinks the collection
	require.NoError(t, s.WriteCollection(ctx, "tasks", []json.RawMessage{json.RawMessage(`{"id":"c"}`)}))
	got, err = s.ReadCollection(ctx, "tasks")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.JSONEq(t, `{"id":"c"}`, string(got[0]))
}

func TestSQLite_WriteBatchIsolatesCollections(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.WriteBatch(ctx, Batch{
		"compliance":  {json.RawMessage(`{"total":1}`)},
		"task_events": {json.RawMessage(`{"taskId":"t1"}`), json.RawMessage(`{"taskId":"t2"}`)},
	}))

	c, err := s.ReadCollection(ctx, "compliance")
	require.NoError(t, err)
	e, err := s.ReadCollection(ctx, "task_events")
	require.NoError(t, err)
	assert.Len(t, c, 1)
	assert.Len(t, e, 2)
}

func TestSQLite_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "again.db")
	ctx := context.Background()

	s1, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s1.WriteCollection(ctx, "user", []json.RawMessage{json.RawMessage(`{"userId":"u1"}`)}))
	require.NoError(t, s1.Close())

	s2, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.ReadCollection(ctx, "user")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func newPostgresWithMock(t *testing.T) (*SQLStorage, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresStorage(db), mock, db
}

func TestPostgres_ReadCollection(t *testing.T) {
	s, mock, db := newPostgresWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+body\s+FROM\s+documents\s+WHERE\s+collection\s*=\s*\$1\s+ORDER\s+BY\s+position$`
	mock.ExpectQuery(q).
		WithArgs("tasks").
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow([]byte(`{"id":"a"}`)).AddRow([]byte(`{"id":"b"}`)))

	got, err := s.ReadCollection(context.Background(), "tasks")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.JSONEq(t, `{"id":"b"}`, string(got[1]))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ReadCollection_DBErrorWrapped(t *testing.T) {
	s, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT body FROM documents`).WillReturnError(errors.New("db down"))

	_, err := s.ReadCollection(context.Background(), "tasks")
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`failed to select collection tasks: .*db down`), err.Error())
}

func TestPostgres_WriteBatch_CommitsInOrder(t *testing.T) {
	s, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM documents WHERE collection = \$1`).WithArgs("compliance").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectPrepare(`INSERT INTO documents`).
		ExpectExec().WithArgs("compliance", 0, `{"total":1}`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`DELETE FROM documents WHERE collection = \$1`).WithArgs("task_events").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(`INSERT INTO documents`).
		ExpectExec().WithArgs("task_events", 0, `{"taskId":"t1"}`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := s.WriteBatch(context.Background(), Batch{
		"task_events": {json.RawMessage(`{"taskId":"t1"}`)},
		"compliance":  {json.RawMessage(`{"total":1}`)},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_WriteCollection_RollsBackOnInsertError(t *testing.T) {
	s, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM documents`).WithArgs("tasks").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare(`INSERT INTO documents`).ExpectExec().WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := s.WriteCollection(context.Background(), "tasks", []json.RawMessage{json.RawMessage(`{}`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert tasks record 0")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_WriteCollection_EmptySkipsInsert(t *testing.T) {
	s, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM documents`).WithArgs("tasks").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, s.WriteCollection(context.Background(), "tasks", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_ErrorWrapped(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	err = RunMigrations(context.Background(), db, "pgx", migrations.Postgres, "postgres")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration error: boom")
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "floppy"})
	require.Error(t, err)
}

func TestOpen_MemoryIsInstrumented(t *testing.T) {
	s, err := Open(context.Background(), Options{Driver: DriverMemory})
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.WriteCollection(ctx, "tasks", []json.RawMessage{json.RawMessage(`{}`)}))
	got, err := s.ReadCollection(ctx, "tasks")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
