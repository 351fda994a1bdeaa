// Package migrations embeds the goose SQL migrations of the wallet database
// and applies them.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var Migrations embed.FS

// goose keeps its base FS and dialect in package state.
var mu sync.Mutex

// Up applies every pending migration to db.
func Up(ctx context.Context, db *sql.DB) error {
	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
