package session

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/briefly/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func countKeys(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM metadata`).Scan(&n))
	return n
}

func TestSaveThenLoad(t *testing.T) {
	db := setupDB(t)
	s := NewSQLiteStorage(db)
	ctx := context.Background()

	user := models.User{ID: "1", FirstName: "Ada", LastName: "Lovelace", Email: "a@b.com"}
	require.NoError(t, s.Save(ctx, Record{Token: "T1", User: user}))

	rec, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T1", rec.Token)
	assert.Equal(t, user, rec.User)
	assert.Equal(t, 2, countKeys(t, db))
}

func TestLoad_Empty(t *testing.T) {
	s := NewSQLiteStorage(setupDB(t))

	_, err := s.Load(context.Background())
	require.ErrorIs(t, err, ErrNoSession)
}

func TestLoad_HalfSessionIsNoSession(t *testing.T) {
	db := setupDB(t)
	_, err := db.Exec(`INSERT INTO metadata(key, value) VALUES ('auth_token', 'T1')`)
	require.NoError(t, err)

	_, err = NewSQLiteStorage(db).Load(context.Background())
	require.ErrorIs(t, err, ErrNoSession)
}

func TestLoad_CorruptUser(t *testing.T) {
	db := setupDB(t)
	_, err := db.Exec(`INSERT INTO metadata(key, value) VALUES ('auth_token', 'T1'), ('user_data', '{not json')`)
	require.NoError(t, err)

	_, err = NewSQLiteStorage(db).Load(context.Background())
	require.ErrorIs(t, err, ErrCorruptSession)
}

func TestSave_EmptyTokenWritesNothing(t *testing.T) {
	db := setupDB(t)
	s := NewSQLiteStorage(db)

	err := s.Save(context.Background(), Record{User: models.User{ID: "1"}})
	require.ErrorIs(t, err, ErrEmptyToken)
	assert.Equal(t, 0, countKeys(t, db))
}

func TestSave_OverwritesPreviousSession(t *testing.T) {
	s := NewSQLiteStorage(setupDB(t))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, Record{Token: "T1", User: models.User{ID: "1"}}))
	require.NoError(t, s.Save(ctx, Record{Token: "T2", User: models.User{ID: "2"}}))

	rec, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T2", rec.Token)
	assert.Equal(t, "2", rec.User.ID)
}

func TestClear_RemovesBothKeysAndIsIdempotent(t *testing.T) {
	db := setupDB(t)
	s := NewSQLiteStorage(db)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO metadata(key, value) VALUES ('unrelated', 'x')`)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, Record{Token: "T1", User: models.User{ID: "1"}}))

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))

	_, err = s.Load(ctx)
	require.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, 1, countKeys(t, db), "only the session keys are removed")
}

func TestSave_FailsOnClosedDB(t *testing.T) {
	db := setupDB(t)
	s := NewSQLiteStorage(db)
	require.NoError(t, db.Close())

	err := s.Save(context.Background(), Record{Token: "T1"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "save session")
}
