package greencards

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/greenwallet/internal/client/migrations"
	"github.com/dmitrijs2005/greenwallet/internal/client/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

var base = time.Date(2021, 7, 1, 12, 0, 0, 0, time.UTC)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db))
	return db
}

func intPtr(n int) *int { return &n }

func card(id string, t models.GreenCardType) *models.GreenCard {
	return &models.GreenCard{
		ID:       id,
		WalletID: "w1",
		Type:     t,
		Origins: []models.Origin{
			{
				ID:             id + "-o1",
				GreenCardID:    id,
				Type:           models.OriginTypeVaccination,
				EventDate:      base.Add(-48 * time.Hour),
				ValidFrom:      base.Add(-24 * time.Hour),
				ExpirationTime: base.Add(240 * time.Hour),
				DoseNumber:     intPtr(1),
				Hints:          []string{"vaccination_dose_correction_applied", "offset"},
			},
			{
				ID:             id + "-o2",
				GreenCardID:    id,
				Type:           models.OriginTypeRecovery,
				EventDate:      base.Add(-72 * time.Hour),
				ValidFrom:      base.Add(-72 * time.Hour),
				ExpirationTime: base.Add(24 * time.Hour),
			},
		},
		Credentials: []models.Credential{
			{
				ID:             id + "-c1",
				GreenCardID:    id,
				Data:           []byte("credential-one"),
				ValidFrom:      base.Add(-time.Hour),
				ExpirationTime: base.Add(24 * time.Hour),
				Version:        2,
			},
		},
	}
}

func TestInsertAndList_RoundTripsTheWholeGraph(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	dom := card("g1", models.GreenCardTypeDomestic)
	eu := card("g2", models.GreenCardTypeEU)
	eu.Credentials = nil

	require.NoError(t, r.Insert(ctx, dom))
	require.NoError(t, r.Insert(ctx, eu))

	got, err := r.List(ctx, "w1")
	require.NoError(t, err)

	want := []models.GreenCard{*dom, *eu}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestList_EmptyWallet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	got, err := r.List(context.Background(), "w1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCountAndDeleteByType(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, card("g1", models.GreenCardTypeDomestic)))
	require.NoError(t, r.Insert(ctx, card("g2", models.GreenCardTypeEU)))
	require.NoError(t, r.Insert(ctx, card("g3", models.GreenCardTypeEU)))

	n, err := r.CountByType(ctx, "w1", models.GreenCardTypeEU)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	deleted, err := r.DeleteByType(ctx, "w1", models.GreenCardTypeDomestic)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	n, err = r.CountByType(ctx, "w1", models.GreenCardTypeDomestic)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDelete_RemovesChildren(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, card("g1", models.GreenCardTypeDomestic)))
	require.NoError(t, r.Insert(ctx, card("g2", models.GreenCardTypeEU)))

	require.NoError(t, r.DeleteByID(ctx, "g1"))

	count := func(table string) int {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
		return n
	}
	assert.Equal(t, 1, count("green_cards"))
	assert.Equal(t, 2, count("origins"))
	assert.Equal(t, 2, count("origin_hints"))
	assert.Equal(t, 1, count("credentials"))

	n, err := r.DeleteAll(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	for _, table := range []string{"green_cards", "origins", "origin_hints", "credentials"} {
		assert.Zero(t, count(table), table)
	}
}

func TestInsert_InvalidOriginWindowFails(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	gc := card("g1", models.GreenCardTypeEU)
	gc.Origins[0].ExpirationTime = gc.Origins[0].ValidFrom.Add(-time.Hour)

	err := r.Insert(context.Background(), gc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to insert origin")
}
