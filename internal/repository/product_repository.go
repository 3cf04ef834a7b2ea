package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fashionetl/internal/model"
)

const productSchema = `
CREATE TABLE IF NOT EXISTS products (
	title      TEXT NOT NULL,
	price      DOUBLE PRECISION NOT NULL,
	rating     DOUBLE PRECISION NOT NULL,
	colors     INTEGER NOT NULL,
	size       TEXT NOT NULL,
	gender     TEXT NOT NULL,
	scraped_at TEXT NOT NULL,
	PRIMARY KEY (title, price, rating, colors, size, gender)
)`

const upsertProduct = `
	INSERT INTO products (title, price, rating, colors, size, gender, scraped_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (title, price, rating, colors, size, gender)
	DO UPDATE SET scraped_at = EXCLUDED.scraped_at`

// ProductRepository is the clean-product sink.
type ProductRepository struct {
	DB *pgxpool.Pool
}

func (r *ProductRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, productSchema)
	return err
}

// SaveAll upserts the whole batch in one transaction and returns the number
// of rows written.
func (r *ProductRepository) SaveAll(ctx context.Context, products []model.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(upsertProduct,
			strings.ToValidUTF8(p.Title, ""), p.Price, p.Rating, p.Colors,
			strings.ToValidUTF8(p.Size, ""), strings.ToValidUTF8(p.Gender, ""), p.Timestamp)
	}

	results := tx.SendBatch(ctx, batch)
	written := 0
	for i := range products {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return 0, fmt.Errorf("failed to save product %d (%s): %w", i, products[i].Title, err)
		}
		written += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit products: %w", err)
	}
	return written, nil
}

// Count returns the number of stored products.
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}
