package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/greenwallet/internal/client/migrations"

	_ "modernc.org/sqlite"
)

// InitDatabase opens the SQLite database at dsn and applies the migrations.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)

	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
