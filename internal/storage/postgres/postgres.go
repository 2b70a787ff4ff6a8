package postgres

import (
	"context"
	"fmt"

	"github.com/FranksOps/shopscout/internal/product"
	"github.com/FranksOps/shopscout/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ensure postgresBackend implements storage.Backend
var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
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
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS products_url_idx ON products (url);
CREATE INDEX IF NOT EXISTS products_created_at_idx ON products (created_at);
`

// New creates a new Postgres-backed storage.Backend.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: create schema: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Save(ctx context.Context, records ...*storage.Record) error {
	const insert = `
	INSERT INTO products (
		id, query, title, price, url, image_url, description, image_source, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(insert,
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
	}

	if err := b.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("postgres: insert: %w", err)
	}
	return nil
}

func (b *postgresBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Record, error) {
	query := `SELECT id, query, title, price, url, image_url, description, image_source, created_at FROM products WHERE 1=1`
	args := []any{}
	paramCount := 1

	if filter.Query != "" {
		query += fmt.Sprintf(` AND query = $%d`, paramCount)
		args = append(args, filter.Query)
		paramCount++
	}
	if filter.URL != "" {
		query += fmt.Sprintf(` AND url = $%d`, paramCount)
		args = append(args, filter.URL)
		paramCount++
	}
	if filter.Since != nil {
		query += fmt.Sprintf(` AND created_at >= $%d`, paramCount)
		args = append(args, *filter.Since)
		paramCount++
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, paramCount)
		args = append(args, filter.Limit)
		paramCount++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, paramCount)
		args = append(args, filter.Offset)
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query: %w", err)
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
			return nil, fmt.Errorf("postgres: scan: %w", err)
		}
		r.ImageSource = product.ImageSource(src)
		r.CreatedAt = r.CreatedAt.UTC()

		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", err)
	}

	return results, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
