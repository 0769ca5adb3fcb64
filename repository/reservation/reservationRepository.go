// repository/reservation/repo.go
package reservation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"libreria/model"
)

var (
	// ErrNoStock is returned by Create when no copy could be reserved,
	// either because available_quantity was already 0 or because a
	// concurrent create took the last copy.
	ErrNoStock = errors.New("no available stock")

	// ErrAlreadyFinalized is returned by CompleteReturn when the
	// reservation already carries an actual return date.
	ErrAlreadyFinalized = errors.New("reservation already finalized")
)

type Repo interface {
	// Create reserves one copy of the book and inserts the reservation in a
	// single transaction.
	Create(ctx context.Context, res *model.Reservation) error

	ByID(ctx context.Context, id int64) (*model.Reservation, error)
	List(ctx context.Context) ([]model.Reservation, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Reservation, error)
	ListByStatus(ctx context.Context, status model.ReservationStatus) ([]model.Reservation, error)

	// CompleteReturn persists the return outcome (status, actual return
	// date, late fee) and releases the copy in a single transaction.
	CompleteReturn(ctx context.Context, res *model.Reservation) error

	// MarkOverdue reclassifies ACTIVE reservations past their expected
	// return date. Returns the number of rows changed.
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const reservationCols = `
	id, user_id, book_external_id, rental_days,
	start_date, expected_return_date, actual_return_date,
	daily_rate, total_fee, late_fee, status, created_at`

func (r *repo) Create(ctx context.Context, res *model.Reservation) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Guard: only decrement while a copy is left. A losing concurrent
	// create observes 0 rows affected here.
	const reserve = `
		UPDATE books
		SET available_quantity = available_quantity - 1
		WHERE external_id = $1
		AND available_quantity > 0`
	out, err := tx.ExecContext(ctx, reserve, res.BookExternalID)
	if err != nil {
		return err
	}
	aff, _ := out.RowsAffected()
	if aff == 0 {
		err = ErrNoStock
		return err
	}

	const insert = `
		INSERT INTO reservations
			(user_id, book_external_id, rental_days, start_date,
			 expected_return_date, daily_rate, total_fee, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`
	if err = tx.QueryRowContext(ctx, insert,
		res.UserID, res.BookExternalID, res.RentalDays, res.StartDate,
		res.ExpectedReturnDate, res.DailyRate, res.TotalFee, res.Status,
	).Scan(&res.ID, &res.CreatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Reservation, error) {
	const q = `
		SELECT ` + reservationCols + `
		FROM reservations
		WHERE id = $1`
	return scanOne(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) List(ctx context.Context) ([]model.Reservation, error) {
	const q = `
		SELECT ` + reservationCols + `
		FROM reservations
		ORDER BY created_at DESC, id DESC`
	return r.queryList(ctx, q)
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.Reservation, error) {
	const q = `
		SELECT ` + reservationCols + `
		FROM reservations
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	return r.queryList(ctx, q, userID)
}

func (r *repo) ListByStatus(ctx context.Context, status model.ReservationStatus) ([]model.Reservation, error) {
	const q = `
		SELECT ` + reservationCols + `
		FROM reservations
		WHERE status = $1
		ORDER BY created_at DESC, id DESC`
	return r.queryList(ctx, q, status)
}

func (r *repo) CompleteReturn(ctx context.Context, res *model.Reservation) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Re-check under lock so two concurrent returns collapse to one winner.
	const lock = `
		SELECT actual_return_date
		FROM reservations
		WHERE id = $1
		FOR UPDATE`
	var already sql.NullTime
	if err = tx.QueryRowContext(ctx, lock, res.ID).Scan(&already); err != nil {
		return err
	}
	if already.Valid {
		err = ErrAlreadyFinalized
		return err
	}

	var lateFee decimal.NullDecimal
	if res.LateFee != nil {
		lateFee = decimal.NullDecimal{Decimal: *res.LateFee, Valid: true}
	}
	const update = `
		UPDATE reservations
		SET status = $2,
			actual_return_date = $3,
			late_fee = $4
		WHERE id = $1`
	if _, err = tx.ExecContext(ctx, update, res.ID, res.Status, res.ActualReturnDate, lateFee); err != nil {
		return err
	}

	// Release the copy. Bounded by stock_quantity: never push the counter
	// past total stock.
	const release = `
		UPDATE books
		SET available_quantity = available_quantity + 1
		WHERE external_id = $1
		AND available_quantity < stock_quantity`
	if _, err = tx.ExecContext(ctx, release, res.BookExternalID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repo) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	const q = `
		UPDATE reservations
		SET status = 'OVERDUE'
		WHERE status = 'ACTIVE'
		AND expected_return_date < $1`
	out, err := r.db.ExecContext(ctx, q, today)
	if err != nil {
		return 0, err
	}
	return out.RowsAffected()
}

func (r *repo) queryList(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		res, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOne(row *sql.Row) (*model.Reservation, error) { return scanRow(row) }

func scanRow(s rowScanner) (*model.Reservation, error) {
	var (
		res      model.Reservation
		returned sql.NullTime
		lateFee  decimal.NullDecimal
	)
	if err := s.Scan(
		&res.ID, &res.UserID, &res.BookExternalID, &res.RentalDays,
		&res.StartDate, &res.ExpectedReturnDate, &returned,
		&res.DailyRate, &res.TotalFee, &lateFee, &res.Status, &res.CreatedAt,
	); err != nil {
		return nil, err
	}
	if returned.Valid {
		t := returned.Time
		res.ActualReturnDate = &t
	}
	if lateFee.Valid {
		d := lateFee.Decimal
		res.LateFee = &d
	}
	return &res, nil
}
