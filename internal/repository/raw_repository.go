package repository

import (
	"context"
	"database/sql"

	"fashionetl/internal/model"
)

const rawSchema = `
CREATE TABLE IF NOT EXISTS product_raw (
	id          UUID PRIMARY KEY,
	seq         BIGSERIAL,
	source_url  TEXT NOT NULL,
	title       TEXT,
	price       TEXT,
	rating      TEXT,
	colors      TEXT,
	size        TEXT,
	gender      TEXT,
	scraped_at  TEXT NOT NULL,
	sync_status CHAR(1) NOT NULL DEFAULT 'S'
)`

// RawRepository keeps scraped cards until the transform step picks them up.
// sync_status 'S' means pending, 'N' means processed.
type RawRepository struct {
	DB *sql.DB
}

func (r *RawRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, rawSchema)
	return err
}

func (r *RawRepository) Save(ctx context.Context, p model.RawProduct) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO product_raw
		(id, source_url, title, price, rating, colors, size, gender, scraped_at, sync_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'S')
	`, p.ID, p.SourceURL, nullable(p.Title), nullable(p.Price), nullable(p.Rating),
		nullable(p.Colors), nullable(p.Size), nullable(p.Gender), p.Timestamp)
	return err
}

// ListPending returns pending rows in scrape order.
func (r *RawRepository) ListPending(ctx context.Context) ([]model.RawProduct, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, source_url, title, price, rating, colors, size, gender, scraped_at
		FROM product_raw
		WHERE sync_status = 'S'
		ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.RawProduct
	for rows.Next() {
		var p model.RawProduct
		var title, price, rating, colors, size, gender sql.NullString
		if err := rows.Scan(&p.ID, &p.SourceURL, &title, &price, &rating, &colors, &size, &gender, &p.Timestamp); err != nil {
			return nil, err
		}
		p.Title = ptr(title)
		p.Price = ptr(price)
		p.Rating = ptr(rating)
		p.Colors = ptr(colors)
		p.Size = ptr(size)
		p.Gender = ptr(gender)
		list = append(list, p)
	}

	return list, rows.Err()
}

func (r *RawRepository) MarkAsProcessed(ctx context.Context, ids []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE product_raw SET sync_status = 'N' WHERE id = $1`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func ptr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
