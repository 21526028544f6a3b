package metadata

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet_InsertThenGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "rick-morty-character-counter", []byte("10001")))

	v, err := r.Get(ctx, "rick-morty-character-counter")
	require.NoError(t, err)
	require.Equal(t, []byte("10001"), v)
}

func TestGet_NotExists_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSet_Upserts(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("[]")))
	require.NoError(t, r.Set(ctx, "k", []byte(`[{"id":10001}]`)))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":10001}]`, string(v))
}

func TestDelete_RemovesOnlyThatKey(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte("1")))
	require.NoError(t, r.Set(ctx, "b", []byte("2")))
	require.NoError(t, r.Delete(ctx, "a"))
	require.NoError(t, r.Delete(ctx, "missing"))

	a, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, a)
	b, err := r.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "2", string(b))
}

func TestRepository_WrapsDriverErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	boom := errors.New("disk I/O error")
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT value FROM metadata WHERE key = \?`).WithArgs("k").WillReturnError(boom)
	_, err = r.Get(ctx, "k")
	require.ErrorIs(t, err, boom)

	mock.ExpectExec(`INSERT INTO metadata`).WithArgs("k", []byte("v")).WillReturnError(boom)
	err = r.Set(ctx, "k", []byte("v"))
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "metadata[k]")

	mock.ExpectExec(`DELETE FROM metadata WHERE key = \?`).WithArgs("k").WillReturnError(boom)
	require.ErrorIs(t, r.Delete(ctx, "k"), boom)

	require.NoError(t, mock.ExpectationsWereMet())
}
