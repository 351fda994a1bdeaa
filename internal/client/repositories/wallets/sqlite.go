package wallets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/greenwallet/internal/client/models"
	"github.com/dmitrijs2005/greenwallet/internal/common"
	"github.com/dmitrijs2005/greenwallet/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetByLabel(ctx context.Context, label string) (*models.Wallet, error) {
	var (
		w         models.Wallet
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `SELECT id, label, created_at FROM wallets WHERE label = ?`, label).
		Scan(&w.ID, &w.Label, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet %q: %w", label, err)
	}
	w.CreatedAt = dbx.FromUnixMilli(createdAt)
	return &w, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, w *models.Wallet) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO wallets (id, label, created_at) VALUES (?, ?, ?)`,
		w.ID, w.Label, dbx.UnixMilli(w.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create wallet %q: %w", w.Label, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM wallets`); err != nil {
		return fmt.Errorf("failed to delete wallets: %w", err)
	}
	return nil
}
