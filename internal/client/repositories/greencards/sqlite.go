package greencards

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/greenwallet/internal/client/models"
	"github.com/dmitrijs2005/greenwallet/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, gc *models.GreenCard) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO green_cards (id, wallet_id, type) VALUES (?, ?, ?)`,
		gc.ID, gc.WalletID, string(gc.Type))
	if err != nil {
		return fmt.Errorf("failed to insert green card: %w", err)
	}

	for i, o := range gc.Origins {
		var dose sql.NullInt64
		if o.DoseNumber != nil {
			dose = sql.NullInt64{Int64: int64(*o.DoseNumber), Valid: true}
		}
		_, err := r.db.ExecContext(ctx, `INSERT INTO origins
			(id, green_card_id, position, type, event_date, valid_from, expiration_time, dose_number)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, gc.ID, i, string(o.Type), dbx.UnixMilli(o.EventDate),
			dbx.UnixMilli(o.ValidFrom), dbx.UnixMilli(o.ExpirationTime), dose)
		if err != nil {
			return fmt.Errorf("failed to insert origin: %w", err)
		}

		for j, hint := range o.Hints {
			_, err := r.db.ExecContext(ctx, `INSERT INTO origin_hints (id, origin_id, position, hint) VALUES (?, ?, ?, ?)`,
				fmt.Sprintf("%s/%d", o.ID, j), o.ID, j, hint)
			if err != nil {
				return fmt.Errorf("failed to insert origin hint: %w", err)
			}
		}
	}

	for _, c := range gc.Credentials {
		_, err := r.db.ExecContext(ctx, `INSERT INTO credentials
			(id, green_card_id, data, valid_from, expiration_time, version)
			VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, gc.ID, c.Data, dbx.UnixMilli(c.ValidFrom), dbx.UnixMilli(c.ExpirationTime), c.Version)
		if err != nil {
			return fmt.Errorf("failed to insert credential: %w", err)
		}
	}

	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, walletID string) ([]models.GreenCard, error) {
	cards, index, err := r.listCards(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, nil
	}
	if err := r.loadOrigins(ctx, walletID, cards, index); err != nil {
		return nil, err
	}
	if err := r.loadCredentials(ctx, walletID, cards, index); err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *SQLiteRepository) listCards(ctx context.Context, walletID string) ([]models.GreenCard, map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, wallet_id, type FROM green_cards WHERE wallet_id = ? ORDER BY rowid`, walletID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to select green cards: %w", err)
	}
	defer rows.Close()

	var cards []models.GreenCard
	index := map[string]int{}
	for rows.Next() {
		var (
			gc models.GreenCard
			t  string
		)
		if err := rows.Scan(&gc.ID, &gc.WalletID, &t); err != nil {
			return nil, nil, fmt.Errorf("failed to scan green card: %w", err)
		}
		gc.Type = models.GreenCardType(t)
		index[gc.ID] = len(cards)
		cards = append(cards, gc)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate green cards: %w", err)
	}
	return cards, index, nil
}

func (r *SQLiteRepository) loadOrigins(ctx context.Context, walletID string, cards []models.GreenCard, index map[string]int) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.green_card_id, o.type, o.event_date, o.valid_from, o.expiration_time, o.dose_number
		FROM origins o JOIN green_cards g ON g.id = o.green_card_id
		WHERE g.wallet_id = ?
		ORDER BY o.green_card_id, o.position`, walletID)
	if err != nil {
		return fmt.Errorf("failed to select origins: %w", err)
	}
	defer rows.Close()

	type loc struct{ card, pos int }
	origins := map[string]loc{}

	for rows.Next() {
		var (
			o                            models.Origin
			t                            string
			eventDate, validFrom, expiry int64
			dose                         sql.NullInt64
		)
		if err := rows.Scan(&o.ID, &o.GreenCardID, &t, &eventDate, &validFrom, &expiry, &dose); err != nil {
			return fmt.Errorf("failed to scan origin: %w", err)
		}
		o.Type = models.OriginType(t)
		o.EventDate = dbx.FromUnixMilli(eventDate)
		o.ValidFrom = dbx.FromUnixMilli(validFrom)
		o.ExpirationTime = dbx.FromUnixMilli(expiry)
		if dose.Valid {
			n := int(dose.Int64)
			o.DoseNumber = &n
		}

		ci, ok := index[o.GreenCardID]
		if !ok {
			continue
		}
		origins[o.ID] = loc{card: ci, pos: len(cards[ci].Origins)}
		cards[ci].Origins = append(cards[ci].Origins, o)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate origins: %w", err)
	}
	rows.Close()

	hints, err := r.db.QueryContext(ctx, `
		SELECT h.origin_id, h.hint
		FROM origin_hints h
		JOIN origins o ON o.id = h.origin_id
		JOIN green_cards g ON g.id = o.green_card_id
		WHERE g.wallet_id = ?
		ORDER BY h.origin_id, h.position`, walletID)
	if err != nil {
		return fmt.Errorf("failed to select origin hints: %w", err)
	}
	defer hints.Close()

	for hints.Next() {
		var originID, hint string
		if err := hints.Scan(&originID, &hint); err != nil {
			return fmt.Errorf("failed to scan origin hint: %w", err)
		}
		if l, ok := origins[originID]; ok {
			o := &cards[l.card].Origins[l.pos]
			o.Hints = append(o.Hints, hint)
		}
	}
	if err := hints.Err(); err != nil {
		return fmt.Errorf("failed to iterate origin hints: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) loadCredentials(ctx context.Context, walletID string, cards []models.GreenCard, index map[string]int) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.green_card_id, c.data, c.valid_from, c.expiration_time, c.version
		FROM credentials c JOIN green_cards g ON g.id = c.green_card_id
		WHERE g.wallet_id = ?
		ORDER BY c.green_card_id, c.valid_from, c.id`, walletID)
	if err != nil {
		return fmt.Errorf("failed to select credentials: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c                 models.Credential
			validFrom, expiry int64
		)
		if err := rows.Scan(&c.ID, &c.GreenCardID, &c.Data, &validFrom, &expiry, &c.Version); err != nil {
			return fmt.Errorf("failed to scan credential: %w", err)
		}
		c.ValidFrom = dbx.FromUnixMilli(validFrom)
		c.ExpirationTime = dbx.FromUnixMilli(expiry)
		if ci, ok := index[c.GreenCardID]; ok {
			cards[ci].Credentials = append(cards[ci].Credentials, c)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate credentials: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CountByType(ctx context.Context, walletID string, t models.GreenCardType) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM green_cards WHERE wallet_id = ? AND type = ?`, walletID, string(t)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count green cards: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.deleteWhere(ctx, `id = ?`, id)
	return err
}

func (r *SQLiteRepository) DeleteByType(ctx context.Context, walletID string, t models.GreenCardType) (int, error) {
	return r.deleteWhere(ctx, `wallet_id = ? AND type = ?`, walletID, string(t))
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context, walletID string) (int, error) {
	return r.deleteWhere(ctx, `wallet_id = ?`, walletID)
}

// deleteWhere removes the matching green cards and everything they own.
// Children are deleted explicitly since foreign key enforcement is a
// per-connection pragma in SQLite.
func (r *SQLiteRepository) deleteWhere(ctx context.Context, cond string, args ...any) (int, error) {
	cards := `SELECT id FROM green_cards WHERE ` + cond

	statements := []string{
		`DELETE FROM origin_hints WHERE origin_id IN (SELECT id FROM origins WHERE green_card_id IN (` + cards + `))`,
		`DELETE FROM origins WHERE green_card_id IN (` + cards + `)`,
		`DELETE FROM credentials WHERE green_card_id IN (` + cards + `)`,
	}
	for _, q := range statements {
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return 0, fmt.Errorf("failed to delete green card children: %w", err)
		}
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM green_cards WHERE `+cond, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete green cards: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}
