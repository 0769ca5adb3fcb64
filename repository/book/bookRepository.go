package bookrepo

import (
	"context"
	"database/sql"

	"libreria/model"
)

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context) ([]model.Book, error)
	ByExternalID(ctx context.Context, externalID int64) (*model.Book, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (external_id, title, price, stock_quantity, available_quantity)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id`
	return r.db.QueryRowContext(ctx, q, b.ExternalID, b.Title, b.Price, b.StockQuantity).Scan(&b.ID)
}

func (r *repo) List(ctx context.Context) ([]model.Book, error) {
	const q = `
		SELECT id, external_id, title, price, stock_quantity, available_quantity
		FROM books
		ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.ExternalID, &b.Title, &b.Price, &b.StockQuantity, &b.AvailableQuantity); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) ByExternalID(ctx context.Context, externalID int64) (*model.Book, error) {
	const q = `
		SELECT id, external_id, title, price, stock_quantity, available_quantity
		FROM books
		WHERE external_id = $1`
	var b model.Book
	if err := r.db.QueryRowContext(ctx, q, externalID).Scan(
		&b.ID, &b.ExternalID, &b.Title, &b.Price, &b.StockQuantity, &b.AvailableQuantity,
	); err != nil {
		return nil, err
	}
	return &b, nil
}
