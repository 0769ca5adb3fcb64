// service/book/book_service_test.go
package booksvc_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"libreria/model"
	booksvc "libreria/service/book"
)

type repoMock struct {
	createFn       func(ctx context.Context, b *model.Book) error
	listFn         func(ctx context.Context) ([]model.Book, error)
	byExternalIDFn func(ctx context.Context, externalID int64) (*model.Book, error)
}

func (m *repoMock) Create(ctx context.Context, b *model.Book) error { return m.createFn(ctx, b) }
func (m *repoMock) List(ctx context.Context) ([]model.Book, error)  { return m.listFn(ctx) }
func (m *repoMock) ByExternalID(ctx context.Context, externalID int64) (*model.Book, error) {
	return m.byExternalIDFn(ctx, externalID)
}

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{})
	price := decimal.RequireFromString("15.99")

	if _, err := s.Create(context.Background(), 0, "title", price, 5); err == nil {
		t.Fatal("expected error for missing external id")
	}
	if _, err := s.Create(context.Background(), 258027, "", price, 5); err == nil {
		t.Fatal("expected error for empty title")
	}
	if _, err := s.Create(context.Background(), 258027, "title", decimal.RequireFromString("-1"), 5); err == nil {
		t.Fatal("expected error for negative price")
	}
	if _, err := s.Create(context.Background(), 258027, "title", price, -1); err == nil {
		t.Fatal("expected error for negative stock")
	}
}

func TestCreate_Success(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Book) error {
			if b.ExternalID != 258027 || b.Title != "The Lord of the Rings" {
				return errors.New("bad args")
			}
			b.ID = 42
			return nil
		},
	}
	s := booksvc.New(m)

	b, err := s.Create(context.Background(), 258027, "The Lord of the Rings", decimal.RequireFromString("15.99"), 10)
	if err != nil || b.ID != 42 {
		t.Fatalf("got book=%v err=%v; want id 42 nil", b, err)
	}
	if b.AvailableQuantity != b.StockQuantity {
		t.Fatalf("new book availability %d != stock %d", b.AvailableQuantity, b.StockQuantity)
	}
}

func TestByExternalID_NotFound(t *testing.T) {
	m := &repoMock{
		byExternalIDFn: func(ctx context.Context, externalID int64) (*model.Book, error) {
			return nil, sql.ErrNoRows
		},
	}
	s := booksvc.New(m)

	if _, err := s.ByExternalID(context.Background(), 99); !errors.Is(err, booksvc.ErrNotFound) {
		t.Fatalf("got %v; want ErrNotFound", err)
	}
}

func TestPassThroughs(t *testing.T) {
	m := &repoMock{
		listFn:         func(ctx context.Context) ([]model.Book, error) { return nil, nil },
		byExternalIDFn: func(ctx context.Context, externalID int64) (*model.Book, error) { return &model.Book{}, nil },
	}
	s := booksvc.New(m)

	if _, err := s.List(context.Background()); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if _, err := s.ByExternalID(context.Background(), 258027); err != nil {
		t.Fatalf("ByExternalID error: %v", err)
	}
}
