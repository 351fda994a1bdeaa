package eventgroups

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/greenwallet/internal/client/models"
	"github.com/dmitrijs2005/greenwallet/internal/common"
	"github.com/dmitrijs2005/greenwallet/internal/dbx"
)

const selectColumns = `SELECT id, wallet_id, type, provider_identifier, json_data, expiry_date, is_draft, created_at FROM event_groups`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, g *models.EventGroup) error {
	query := `INSERT INTO event_groups (id, wallet_id, type, provider_identifier, json_data, expiry_date, is_draft, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		g.ID, g.WalletID, string(g.Type), g.ProviderIdentifier, g.JSONData,
		dbx.NullUnixMilli(g.ExpiryDate), g.IsDraft, dbx.UnixMilli(g.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert event group: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEventGroup(s rowScanner) (models.EventGroup, error) {
	var (
		g         models.EventGroup
		mode      string
		expiry    sql.NullInt64
		createdAt int64
	)
	if err := s.Scan(&g.ID, &g.WalletID, &mode, &g.ProviderIdentifier, &g.JSONData, &expiry, &g.IsDraft, &createdAt); err != nil {
		return models.EventGroup{}, err
	}
	g.Type = models.EventMode(mode)
	g.ExpiryDate = dbx.FromNullUnixMilli(expiry)
	g.CreatedAt = dbx.FromUnixMilli(createdAt)
	return g, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.EventGroup, error) {
	g, err := scanEventGroup(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event group %s: %w", id, err)
	}
	return &g, nil
}

func (r *SQLiteRepository) List(ctx context.Context, walletID string) ([]models.EventGroup, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` WHERE wallet_id = ? ORDER BY created_at, id`, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to select event groups: %w", err)
	}
	defer rows.Close()

	var result []models.EventGroup
	for rows.Next() {
		g, err := scanEventGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event group: %w", err)
		}
		result = append(result, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event groups: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) UpdateExpiry(ctx context.Context, id string, expiry time.Time) (bool, error) {
	return r.update(ctx, `UPDATE event_groups SET expiry_date = ? WHERE id = ?`, dbx.UnixMilli(expiry), id)
}

func (r *SQLiteRepository) UpdateDraft(ctx context.Context, id string, isDraft bool) (bool, error) {
	return r.update(ctx, `UPDATE event_groups SET is_draft = ? WHERE id = ?`, isDraft, id)
}

func (r *SQLiteRepository) update(ctx context.Context, query string, args ...any) (bool, error) {
	n, err := r.exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update event group: %w", err)
	}
	return n == 1, nil
}

func (r *SQLiteRepository) DeleteByTypeAndProvider(ctx context.Context, walletID string, mode models.EventMode, provider string) (int, error) {
	return r.delete(ctx, `WHERE wallet_id = ? AND type = ? AND lower(provider_identifier) = lower(?)`, walletID, string(mode), provider)
}

func (r *SQLiteRepository) DeleteByType(ctx context.Context, walletID string, mode models.EventMode) (int, error) {
	return r.delete(ctx, `WHERE wallet_id = ? AND type = ?`, walletID, string(mode))
}

func (r *SQLiteRepository) DeleteDrafts(ctx context.Context, walletID string) (int, error) {
	return r.delete(ctx, `WHERE wallet_id = ? AND is_draft = 1`, walletID)
}

func (r *SQLiteRepository) DeleteExpiredBefore(ctx context.Context, walletID string, at time.Time) (int, error) {
	return r.delete(ctx, `WHERE wallet_id = ? AND expiry_date IS NOT NULL AND expiry_date < ?`, walletID, dbx.UnixMilli(at))
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context, walletID string) (int, error) {
	return r.delete(ctx, `WHERE wallet_id = ?`, walletID)
}

func (r *SQLiteRepository) delete(ctx context.Context, where string, args ...any) (int, error) {
	n, err := r.exec(ctx, `DELETE FROM event_groups `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete event groups: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) exec(ctx context.Context, query string, args ...any) (int, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}
