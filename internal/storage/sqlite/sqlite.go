package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/FranksOps/shopscout/internal/product"
	"github.com/FranksOps/shopscout/internal/storage"
	_ "modernc.org/sqlite"
)

// ensure sqliteBackend implements storage.Backend
var _ storage.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	title TEXT NOT NULL,
	price TEXT NOT NULL,
	url TEXT NOT NULL,
	image_url TEXT NOT NULL,
	description TEXT NOT NULL,
	image_source TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS products_url_idx ON products (url);
CREATE INDEX IF NOT EXISTS products_created_at_idx ON products (created_at);
`

// New creates a new SQLite-backed storage.Backend.
func New(dsn string) (storage.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}

	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Save(ctx context.Context, records ...*storage.Record) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO products (
		id, query, title, price, url, image_url, description, image_source, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			r.ID,
			r.Query,
			r.Title,
			r.Price,
			r.URL,
			r.ImageURL,
			r.Description,
			string(r.ImageSource),
			r.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("sqlite: insert %s: %w", r.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func (b *sqliteBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Record, error) {
	query := `SELECT id, query, title, price, url, image_url, description, image_source, created_at FROM products WHERE 1=1`
	args := []any{}

	if filter.Query != "" {
		query += ` AND query = ?`
		args = append(args, filter.Query)
	}
	if filter.URL != "" {
		query += ` AND url = ?`
		args = append(args, filter.URL)
	}
	if filter.Since != nil {
		query += ` AND created_at >= ?`
		args = append(args, filter.Since.UTC())
	}

	query += ` ORDER BY created_at DESC`

	// SQLite only accepts OFFSET after a LIMIT; -1 means no limit.
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, filter.Offset)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	defer rows.Close()

	results := []*storage.Record{}
	for rows.Next() {
		var r storage.Record
		var src string

		err := rows.Scan(
			&r.ID, &r.Query, &r.Title, &r.Price, &r.URL, &r.ImageURL,
			&r.Description, &src, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		r.ImageSource = product.ImageSource(src)

		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: rows: %w", err)
	}

	return results, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
