package reservation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"libreria/model"
	rrepo "libreria/repository/reservation"
)

// errors used by controllers

type ErrCode string

const (
	ErrUserNotFound ErrCode = "USER_NOT_FOUND"
	ErrBookNotFound ErrCode = "BOOK_NOT_FOUND"
	ErrNotFound     ErrCode = "RESERVATION_NOT_FOUND"
	ErrNoStock      ErrCode = "NO_STOCK"
	ErrAlreadyFinal ErrCode = "ALREADY_FINALIZED"
	ErrBadInput     ErrCode = "BAD_INPUT"
)

// MsgBookUnavailable is the message surfaced when a book has no copies left.
const MsgBookUnavailable = "El libro no está disponible para reserva"

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode { return e.code }

func makeErr(c ErrCode) error              { return codedError{code: c} }
func makeErrMsg(c ErrCode, m string) error { return codedError{code: c, msg: m} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// lateFeeRate is charged per day past the expected return date, against the
// book's current price (the creation fee uses the snapshotted daily rate).
var lateFeeRate = decimal.RequireFromString("0.15")

type CreateInput struct {
	UserID         int64
	BookExternalID int64
	RentalDays     int
	StartDate      time.Time
}

type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type Books interface {
	ByExternalID(ctx context.Context, externalID int64) (*model.Book, error)
}

type Repo interface {
	Create(ctx context.Context, res *model.Reservation) error
	ByID(ctx context.Context, id int64) (*model.Reservation, error)
	List(ctx context.Context) ([]model.Reservation, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Reservation, error)
	ListByStatus(ctx context.Context, status model.ReservationStatus) ([]model.Reservation, error)
	CompleteReturn(ctx context.Context, res *model.Reservation) error
}

type Service interface {
	// Create: reserve one copy, snapshot the daily rate and persist the
	// reservation as ACTIVE.
	Create(ctx context.Context, in CreateInput) (*model.Reservation, error)

	// Return: record the actual return date, settle any late fee and free
	// the copy.
	Return(ctx context.Context, reservationID int64, returnDate time.Time) (*model.Reservation, error)

	ByID(ctx context.Context, id int64) (*model.Reservation, error)
	List(ctx context.Context) ([]model.Reservation, error)
	ByUser(ctx context.Context, userID int64) ([]model.Reservation, error)
	Active(ctx context.Context) ([]model.Reservation, error)
}

// ----- Service implementation -----

type service struct {
	users Users
	books Books
	r     Repo
}

func New(users Users, books Books, r Repo) Service {
	return &service{users: users, books: books, r: r}
}

func (s *service) Create(ctx context.Context, in CreateInput) (*model.Reservation, error) {
	if in.RentalDays <= 0 {
		return nil, makeErr(ErrBadInput)
	}

	if _, err := s.users.ByID(ctx, in.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrUserNotFound)
		}
		return nil, err
	}

	book, err := s.books.ByExternalID(ctx, in.BookExternalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	if book.AvailableQuantity == 0 {
		return nil, makeErrMsg(ErrNoStock, MsgBookUnavailable)
	}

	start := dateOnly(in.StartDate)
	res := &model.Reservation{
		UserID:             in.UserID,
		BookExternalID:     in.BookExternalID,
		RentalDays:         in.RentalDays,
		StartDate:          start,
		ExpectedReturnDate: start.AddDate(0, 0, in.RentalDays),
		DailyRate:          book.Price,
		TotalFee:           book.Price.Mul(decimal.NewFromInt(int64(in.RentalDays))),
		Status:             model.ReservationActive,
	}

	if err := s.r.Create(ctx, res); err != nil {
		if errors.Is(err, rrepo.ErrNoStock) {
			// Lost the race for the last copy.
			return nil, makeErrMsg(ErrNoStock, MsgBookUnavailable)
		}
		return nil, err
	}
	return res, nil
}

func (s *service) Return(ctx context.Context, reservationID int64, returnDate time.Time) (*model.Reservation, error) {
	res, err := s.r.ByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if res.Finalized() {
		return nil, makeErr(ErrAlreadyFinal)
	}

	book, err := s.books.ByExternalID(ctx, res.BookExternalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}

	returned := dateOnly(returnDate)
	res.ActualReturnDate = &returned

	if lateDays := daysBetween(res.ExpectedReturnDate, returned); lateDays > 0 {
		res.Status = model.ReservationOverdue
		// Late fee runs against the book's current price, not the
		// snapshotted daily rate.
		fee := book.Price.Mul(lateFeeRate).Mul(decimal.NewFromInt(int64(lateDays)))
		res.LateFee = &fee
	} else {
		res.Status = model.ReservationReturned
		res.LateFee = nil
	}

	if err := s.r.CompleteReturn(ctx, res); err != nil {
		if errors.Is(err, rrepo.ErrAlreadyFinalized) {
			return nil, makeErr(ErrAlreadyFinal)
		}
		return nil, err
	}
	return res, nil
}

func (s *service) ByID(ctx context.Context, id int64) (*model.Reservation, error) {
	res, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return res, nil
}

func (s *service) List(ctx context.Context) ([]model.Reservation, error) {
	return s.r.List(ctx)
}

func (s *service) ByUser(ctx context.Context, userID int64) ([]model.Reservation, error) {
	return s.r.ListByUser(ctx, userID)
}

func (s *service) Active(ctx context.Context) ([]model.Reservation, error) {
	return s.r.ListByStatus(ctx, model.ReservationActive)
}

// dateOnly truncates to a calendar date in UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the calendar days from a to b; negative when b is
// before a.
func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)) / (24 * time.Hour))
}
