package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MrSnakeDoc/snapstash/internal/utils"
)

// Backend stores each collection as one row of the collections table.
type Backend struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at dsn and runs the migration.
// dsn is a file path or ":memory:".
func Open(ctx context.Context, dsn string) (*Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}

	// A single connection serializes writers and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		utils.Close(db)
		return nil, fmt.Errorf("ping sqlite %s: %w", dsn, err)
	}

	if err := migrate(ctx, db); err != nil {
		utils.Close(db)
		return nil, fmt.Errorf("migrate sqlite %s: %w", dsn, err)
	}

	return &Backend{db: db, now: time.Now}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := db.ExecContext(ctx, query)
	return err
}

// Load returns the stored value of every requested collection that exists.
func (b *Backend) Load(ctx context.Context, names ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(names))
	if len(names) == 0 {
		return out, nil
	}

	query := `SELECT name, value FROM collections WHERE name IN (?` + strings.Repeat(",?", len(names)-1) + `)`
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query collections: %w", err)
	}
	defer utils.Close(rows)

	for rows.Next() {
		var (
			name  string
			value []byte
		)
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		out[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}

	return out, nil
}

// Save upserts every collection in one transaction.
func (b *Backend) Save(ctx context.Context, values map[string][]byte) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO collections (name, value, updated_at) VALUES (?, ?, ?)
			  ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer utils.Close(stmt)

	now := b.now().UTC()
	for name, value := range values {
		if _, err := stmt.ExecContext(ctx, name, value, now); err != nil {
			return fmt.Errorf("upsert %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (b *Backend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

// Close closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}
