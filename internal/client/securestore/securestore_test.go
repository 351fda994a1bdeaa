package securestore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/greenwallet/internal/client/migrations"
	"github.com/dmitrijs2005/greenwallet/internal/client/models"
	"github.com/dmitrijs2005/greenwallet/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/greenwallet/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupRepo(t *testing.T) *metadata.SQLiteRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db))
	return metadata.NewSQLiteRepository(db)
}

func TestOpen_SameSaltAcrossOpens(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	s, err := Open(ctx, repo, []byte("pass"))
	require.NoError(t, err)
	require.NoError(t, s.SetHolderSecretKey(ctx, []byte("secret-1")))

	reopened, err := Open(ctx, repo, []byte("pass"))
	require.NoError(t, err)

	key, err := reopened.HolderSecretKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret-1"), key)
}

func TestOpen_WrongPassphrase(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	_, err := Open(ctx, repo, []byte("pass"))
	require.NoError(t, err)

	_, err = Open(ctx, repo, []byte("not the pass"))
	require.ErrorIs(t, err, ErrLocked)
}

func TestHolderSecretKey_SetClear(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	s, err := Open(ctx, repo, []byte("pass"))
	require.NoError(t, err)

	key, err := s.HolderSecretKey(ctx)
	require.NoError(t, err)
	assert.Nil(t, key)

	require.NoError(t, s.SetHolderSecretKey(ctx, []byte("k")))

	raw, err := repo.Get(ctx, keySecretKey)
	require.NoError(t, err)
	assert.NotEqual(t, []byte("k"), raw)

	require.NoError(t, s.SetHolderSecretKey(ctx, nil))
	key, err = s.HolderSecretKey(ctx)
	require.NoError(t, err)
	assert.Nil(t, key)
}

func TestRemoteConfiguration(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	s, err := Open(ctx, repo, []byte("pass"))
	require.NoError(t, err)

	cfg, err := s.RemoteConfiguration(ctx)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	days := 7
	require.NoError(t, s.SetRemoteConfiguration(ctx, &models.RemoteConfiguration{
		ConfigTTL:              3600,
		CredentialRenewalDays:  &days,
		BackendTLSCertificates: []string{"cert"},
	}))

	cfg, err = s.RemoteConfiguration(ctx)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 7, cfg.RenewalDays(5))
	assert.Equal(t, []string{"cert"}, cfg.BackendTLSCertificates)
}

func TestTamperedValueIsMalformed(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	s, err := Open(ctx, repo, []byte("pass"))
	require.NoError(t, err)
	require.NoError(t, s.SetHolderSecretKey(ctx, []byte("k")))

	raw, err := repo.Get(ctx, keySecretKey)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01
	require.NoError(t, repo.Set(ctx, keySecretKey, raw))

	_, err = s.HolderSecretKey(ctx)
	require.ErrorIs(t, err, common.ErrorMalformed)
}

func TestWipe(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	s, err := Open(ctx, repo, []byte("pass"))
	require.NoError(t, err)
	require.NoError(t, s.SetHolderSecretKey(ctx, []byte("k")))
	require.NoError(t, repo.Set(ctx, "wallet.other", []byte("keep")))

	require.NoError(t, s.Wipe(ctx))

	m, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"wallet.other": []byte("keep")}, m)

	_, err = Open(ctx, repo, []byte("another pass"))
	require.NoError(t, err)
}
