package booksvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"libreria/model"
	repo "libreria/repository/book"
)

var ErrNotFound = errors.New("book not found")

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context) ([]model.Book, error)
	ByExternalID(ctx context.Context, externalID int64) (*model.Book, error)
}

type Service interface {
	Create(ctx context.Context, externalID int64, title string, price decimal.Decimal, stock int64) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	ByExternalID(ctx context.Context, externalID int64) (*model.Book, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

var _ Repo = (repo.Repo)(nil) // the real repository satisfies the service's view

func (s *service) Create(ctx context.Context, externalID int64, title string, price decimal.Decimal, stock int64) (*model.Book, error) {
	if externalID <= 0 || title == "" || price.IsNegative() || stock < 0 {
		return nil, errors.New("invalid payload")
	}
	b := &model.Book{
		ExternalID:        externalID,
		Title:             title,
		Price:             price,
		StockQuantity:     stock,
		AvailableQuantity: stock,
	}
	if err := s.r.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) List(ctx context.Context) ([]model.Book, error) { return s.r.List(ctx) }

func (s *service) ByExternalID(ctx context.Context, externalID int64) (*model.Book, error) {
	b, err := s.r.ByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}
