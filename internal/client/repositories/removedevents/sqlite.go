package removedevents

import (
	"context"
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

func (r *SQLiteRepository) Insert(ctx context.Context, e *models.RemovedEvent) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO removed_events (id, wallet_id, type, event_date, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.WalletID, string(e.Type), dbx.UnixMilli(e.EventDate), string(e.Reason), dbx.UnixMilli(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert removed event: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, walletID string) ([]models.RemovedEvent, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, wallet_id, type, event_date, reason, created_at
		FROM removed_events WHERE wallet_id = ? ORDER BY created_at, rowid`, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to select removed events: %w", err)
	}
	defer rows.Close()

	var result []models.RemovedEvent
	for rows.Next() {
		var (
			e                    models.RemovedEvent
			mode, reason         string
			eventDate, createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.WalletID, &mode, &eventDate, &reason, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan removed event: %w", err)
		}
		e.Type = models.EventMode(mode)
		e.Reason = models.RemovalReason(reason)
		e.EventDate = dbx.FromUnixMilli(eventDate)
		e.CreatedAt = dbx.FromUnixMilli(createdAt)
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate removed events: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByReason(ctx context.Context, walletID string, reason models.RemovalReason) (int, error) {
	return r.delete(ctx, `DELETE FROM removed_events WHERE wallet_id = ? AND reason = ?`, walletID, string(reason))
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context, walletID string) (int, error) {
	return r.delete(ctx, `DELETE FROM removed_events WHERE wallet_id = ?`, walletID)
}

func (r *SQLiteRepository) delete(ctx context.Context, query string, args ...any) (int, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete removed events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}
