package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/greenwallet/internal/client/migrations"
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
	require.NoError(t, migrations.Up(context.Background(), db))
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k1", []byte{0x01, 0x02}))

	v, err := r.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, v)
}

func TestGet_NotExists_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSet_UpsertOverwritesValue(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
}

func TestListAndDelete(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{0xAA}))
	require.NoError(t, r.Set(ctx, "b", []byte{0xBB, 0xCC}))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": {0xAA}, "b": {0xBB, 0xCC}}, m)

	require.NoError(t, r.Delete(ctx, "a"))
	require.NoError(t, r.Delete(ctx, "a"))

	v, err := r.Get(ctx, "a")
	require.NoError(t, err)
	require.Nil(t, v)

	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"b": {0xBB, 0xCC}}, m)
}

func TestDeletePrefix(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "secure.salt", []byte{1}))
	require.NoError(t, r.Set(ctx, "secure.holder_secret_key", []byte{2}))
	require.NoError(t, r.Set(ctx, "SECURE.other", []byte{3}))
	require.NoError(t, r.Set(ctx, "wallet.version", []byte{4}))

	n, err := r.DeletePrefix(ctx, "secure.")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 2)
	assert.Contains(t, m, "SECURE.other")
	assert.Contains(t, m, "wallet.version")
}

func TestErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, `metadata get "k"`)

	err = r.Set(ctx, "k", []byte("v"))
	require.ErrorContains(t, err, `metadata set "k"`)

	err = r.Delete(ctx, "k")
	require.ErrorContains(t, err, `metadata delete "k"`)

	_, err = r.DeletePrefix(ctx, "k")
	require.ErrorContains(t, err, `metadata delete prefix "k"`)

	_, err = r.List(ctx)
	require.ErrorContains(t, err, "metadata list")
}
