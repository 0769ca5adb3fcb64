// service/reservation/reservation_service_test.go
package reservation_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"libreria/model"
	rrepo "libreria/repository/reservation"
	rs "libreria/service/reservation"
)

type usersMock struct {
	byIDFn func(ctx context.Context, id int64) (*model.User, error)
}

func (m *usersMock) ByID(ctx context.Context, id int64) (*model.User, error) {
	return m.byIDFn(ctx, id)
}

type booksMock struct {
	byExternalIDFn func(ctx context.Context, externalID int64) (*model.Book, error)
}

func (m *booksMock) ByExternalID(ctx context.Context, externalID int64) (*model.Book, error) {
	return m.byExternalIDFn(ctx, externalID)
}

type repoMock struct {
	createFn         func(ctx context.Context, res *model.Reservation) error
	byIDFn           func(ctx context.Context, id int64) (*model.Reservation, error)
	listFn           func(ctx context.Context) ([]model.Reservation, error)
	listByUserFn     func(ctx context.Context, userID int64) ([]model.Reservation, error)
	listByStatusFn   func(ctx context.Context, status model.ReservationStatus) ([]model.Reservation, error)
	completeReturnFn func(ctx context.Context, res *model.Reservation) error
}

func (m *repoMock) Create(ctx context.Context, res *model.Reservation) error {
	return m.createFn(ctx, res)
}
func (m *repoMock) ByID(ctx context.Context, id int64) (*model.Reservation, error) {
	return m.byIDFn(ctx, id)
}
func (m *repoMock) List(ctx context.Context) ([]model.Reservation, error) { return m.listFn(ctx) }
func (m *repoMock) ListByUser(ctx context.Context, userID int64) ([]model.Reservation, error) {
	return m.listByUserFn(ctx, userID)
}
func (m *repoMock) ListByStatus(ctx context.Context, status model.ReservationStatus) ([]model.Reservation, error) {
	return m.listByStatusFn(ctx, status)
}
func (m *repoMock) CompleteReturn(ctx context.Context, res *model.Reservation) error {
	return m.completeReturnFn(ctx, res)
}

func testUser() *model.User {
	return &model.User{ID: 1, Name: "Juan Pérez", Email: "juan@example.com"}
}

func testBook() *model.Book {
	return &model.Book{
		ID:                1,
		ExternalID:        258027,
		Title:             "The Lord of the Rings",
		Price:             decimal.RequireFromString("15.99"),
		StockQuantity:     10,
		AvailableQuantity: 5,
	}
}

func usersWith(u *model.User) *usersMock {
	return &usersMock{byIDFn: func(ctx context.Context, id int64) (*model.User, error) { return u, nil }}
}

func booksWith(b *model.Book) *booksMock {
	return &booksMock{byExternalIDFn: func(ctx context.Context, externalID int64) (*model.Book, error) { return b, nil }}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// --- Create ---

func TestCreate_Success(t *testing.T) {
	ctx := context.Background()
	book := testBook()

	var saved *model.Reservation
	repo := &repoMock{
		createFn: func(ctx context.Context, res *model.Reservation) error {
			res.ID = 1
			res.CreatedAt = time.Now()
			saved = res
			return nil
		},
	}
	svc := rs.New(usersWith(testUser()), booksWith(book), repo)

	start := date(2026, 1, 10)
	out, err := svc.Create(ctx, rs.CreateInput{
		UserID:         1,
		BookExternalID: 258027,
		RentalDays:     7,
		StartDate:      start,
	})
	require.NoError(t, err)
	require.NotNil(t, saved)
	require.Equal(t, int64(1), out.ID)
	require.Equal(t, int64(258027), out.BookExternalID)
	require.Equal(t, model.ReservationActive, out.Status)
	require.Equal(t, date(2026, 1, 17), out.ExpectedReturnDate)
	require.True(t, out.DailyRate.Equal(decimal.RequireFromString("15.99")),
		"daily rate = %s", out.DailyRate)
	require.True(t, out.TotalFee.Equal(decimal.RequireFromString("111.93")),
		"total fee = %s", out.TotalFee)
	require.Nil(t, out.LateFee)
}

func TestCreate_InvalidRentalDays(t *testing.T) {
	svc := rs.New(usersWith(testUser()), booksWith(testBook()), &repoMock{})

	_, err := svc.Create(context.Background(), rs.CreateInput{
		UserID:         1,
		BookExternalID: 258027,
		RentalDays:     0,
		StartDate:      date(2026, 1, 10),
	})
	require.Error(t, err)
	require.Equal(t, rs.ErrBadInput, rs.Code(err))
}

func TestCreate_UserNotFound(t *testing.T) {
	users := &usersMock{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := rs.New(users, booksWith(testBook()), &repoMock{})

	_, err := svc.Create(context.Background(), rs.CreateInput{
		UserID:         99,
		BookExternalID: 258027,
		RentalDays:     7,
		StartDate:      date(2026, 1, 10),
	})
	require.Error(t, err)
	require.Equal(t, rs.ErrUserNotFound, rs.Code(err))
}

func TestCreate_BookNotFound(t *testing.T) {
	books := &booksMock{
		byExternalIDFn: func(ctx context.Context, externalID int64) (*model.Book, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := rs.New(usersWith(testUser()), books, &repoMock{})

	_, err := svc.Create(context.Background(), rs.CreateInput{
		UserID:         1,
		BookExternalID: 424242,
		RentalDays:     7,
		StartDate:      date(2026, 1, 10),
	})
	require.Error(t, err)
	require.Equal(t, rs.ErrBookNotFound, rs.Code(err))
}

func TestCreate_BookNotAvailable(t *testing.T) {
	book := testBook()
	book.AvailableQuantity = 0
	svc := rs.New(usersWith(testUser()), booksWith(book), &repoMock{})

	_, err := svc.Create(context.Background(), rs.CreateInput{
		UserID:         1,
		BookExternalID: 258027,
		RentalDays:     5,
		StartDate:      date(2026, 1, 10),
	})
	require.Error(t, err)
	require.Equal(t, rs.ErrNoStock, rs.Code(err))
	require.Contains(t, err.Error(), "no está disponible para reserva")
}

func TestCreate_RaceLosesLastCopy(t *testing.T) {
	// Availability looked fine at read time but the repo transaction lost
	// the race for the last copy.
	repo := &repoMock{
		createFn: func(ctx context.Context, res *model.Reservation) error {
			return rrepo.ErrNoStock
		},
	}
	svc := rs.New(usersWith(testUser()), booksWith(testBook()), repo)

	_, err := svc.Create(context.Background(), rs.CreateInput{
		UserID:         1,
		BookExternalID: 258027,
		RentalDays:     7,
		StartDate:      date(2026, 1, 10),
	})
	require.Error(t, err)
	require.Equal(t, rs.ErrNoStock, rs.Code(err))
	require.Contains(t, err.Error(), "no está disponible para reserva")
}

// --- Return ---

func activeReservation() *model.Reservation {
	return &model.Reservation{
		ID:                 1,
		UserID:             1,
		BookExternalID:     258027,
		RentalDays:         7,
		StartDate:          date(2026, 1, 10),
		ExpectedReturnDate: date(2026, 1, 17),
		DailyRate:          decimal.RequireFromString("15.99"),
		TotalFee:           decimal.RequireFromString("111.93"),
		Status:             model.ReservationActive,
	}
}

func TestReturn_OnTime(t *testing.T) {
	res := activeReservation()
	var saved *model.Reservation
	repo := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Reservation, error) { return res, nil },
		completeReturnFn: func(ctx context.Context, r *model.Reservation) error {
			saved = r
			return nil
		},
	}
	svc := rs.New(usersWith(testUser()), booksWith(testBook()), repo)

	out, err := svc.Return(context.Background(), 1, date(2026, 1, 17))
	require.NoError(t, err)
	require.NotNil(t, saved)
	require.Equal(t, model.ReservationReturned, out.Status)
	require.NotNil(t, out.ActualReturnDate)
	require.Equal(t, date(2026, 1, 17), *out.ActualReturnDate)
	require.Nil(t, out.LateFee)
}

func TestReturn_Early(t *testing.T) {
	res := activeReservation()
	repo := &repoMock{
		byIDFn:           func(ctx context.Context, id int64) (*model.Reservation, error) { return res, nil },
		completeReturnFn: func(ctx context.Context, r *model.Reservation) error { return nil },
	}
	svc := rs.New(usersWith(testUser()), booksWith(testBook()), repo)

	out, err := svc.Return(context.Background(), 1, date(2026, 1, 12))
	require.NoError(t, err)
	require.Equal(t, model.ReservationReturned, out.Status)
	require.Nil(t, out.LateFee)
}

func TestReturn_Overdue(t *testing.T) {
	res := activeReservation()
	repo := &repoMock{
		byIDFn:           func(ctx context.Context, id int64) (*model.Reservation, error) { return res, nil },
		completeReturnFn: func(ctx context.Context, r *model.Reservation) error { return nil },
	}
	svc := rs.New(usersWith(testUser()), booksWith(testBook()), repo)

	// 3 days past the expected return date.
	out, err := svc.Return(context.Background(), 1, date(2026, 1, 20))
	require.NoError(t, err)
	require.Equal(t, model.ReservationOverdue, out.Status)
	require.NotNil(t, out.LateFee)
	// 15.99 * 0.15 * 3
	require.True(t, out.LateFee.Equal(decimal.RequireFromString("7.1955")),
		"late fee = %s", out.LateFee)
}

func TestReturn_LateFeeUsesCurrentPrice(t *testing.T) {
	// The book price changed after the reservation snapshotted its daily
	// rate; the late fee follows the current price.
	res := activeReservation()
	book := testBook()
	book.Price = decimal.RequireFromString("20.00")
	repo := &repoMock{
		byIDFn:           func(ctx context.Context, id int64) (*model.Reservation, error) { return res, nil },
		completeReturnFn: func(ctx context.Context, r *model.Reservation) error { return nil },
	}
	svc := rs.New(usersWith(testUser()), booksWith(book), repo)

	out, err := svc.Return(context.Background(), 1, date(2026, 1, 19))
	require.NoError(t, err)
	require.True(t, out.LateFee.Equal(decimal.RequireFromString("6.00")),
		"late fee = %s", out.LateFee)
	require.True(t, out.DailyRate.Equal(decimal.RequireFromString("15.99")))
}

func TestReturn_NotFound(t *testing.T) {
	repo := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Reservation, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := rs.New(usersWith(testUser()), booksWith(testBook()), repo)

	_, err := svc.Return(context.Background(), 404, date(2026, 1, 17))
	require.Error(t, err)
	require.Equal(t, rs.ErrNotFound, rs.Code(err))
}

func TestReturn_AlreadyReturned(t *testing.T) {
	res := activeReservation()
	returned := date(2026, 1, 16)
	res.ActualReturnDate = &returned
	res.Status = model.ReservationReturned

	repo := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Reservation, error) { return res, nil },
	}
	svc := rs.New(usersWith(testUser()), booksWith(testBook()), repo)

	_, err := svc.Return(context.Background(), 1, date(2026, 1, 18))
	require.Error(t, err)
	require.Equal(t, rs.ErrAlreadyFinal, rs.Code(err))
}

func TestReturn_ConcurrentReturnConflict(t *testing.T) {
	// The read saw an open reservation but the locked re-check inside the
	// repo transaction found it finalized.
	res := activeReservation()
	repo := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Reservation, error) { return res, nil },
		completeReturnFn: func(ctx context.Context, r *model.Reservation) error {
			return rrepo.ErrAlreadyFinalized
		},
	}
	svc := rs.New(usersWith(testUser()), booksWith(testBook()), repo)

	_, err := svc.Return(context.Background(), 1, date(2026, 1, 18))
	require.Error(t, err)
	require.Equal(t, rs.ErrAlreadyFinal, rs.Code(err))
}

func TestReturn_OverdueByScanStillReturnable(t *testing.T) {
	// Flagged OVERDUE by the scan but never returned: the return call still
	// settles the late fee.
	res := activeReservation()
	res.Status = model.ReservationOverdue

	repo := &repoMock{
		byIDFn:           func(ctx context.Context, id int64) (*model.Reservation, error) { return res, nil },
		completeReturnFn: func(ctx context.Context, r *model.Reservation) error { return nil },
	}
	svc := rs.New(usersWith(testUser()), booksWith(testBook()), repo)

	out, err := svc.Return(context.Background(), 1, date(2026, 1, 19))
	require.NoError(t, err)
	require.Equal(t, model.ReservationOverdue, out.Status)
	require.NotNil(t, out.LateFee)
	require.True(t, out.LateFee.Equal(decimal.RequireFromString("4.797")),
		"late fee = %s", out.LateFee)
}

// --- Reads ---

func TestReads_PassThrough(t *testing.T) {
	res := activeReservation()
	repo := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Reservation, error) { return res, nil },
		listFn: func(ctx context.Context) ([]model.Reservation, error) {
			return []model.Reservation{*res}, nil
		},
		listByUserFn: func(ctx context.Context, userID int64) ([]model.Reservation, error) {
			require.Equal(t, int64(1), userID)
			return []model.Reservation{*res}, nil
		},
		listByStatusFn: func(ctx context.Context, status model.ReservationStatus) ([]model.Reservation, error) {
			require.Equal(t, model.ReservationActive, status)
			return []model.Reservation{*res}, nil
		},
	}
	svc := rs.New(usersWith(testUser()), booksWith(testBook()), repo)
	ctx := context.Background()

	got, err := svc.ByID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), got.ID)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	mine, err := svc.ByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
}

func TestByID_NotFound(t *testing.T) {
	repo := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Reservation, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := rs.New(usersWith(testUser()), booksWith(testBook()), repo)

	_, err := svc.ByID(context.Background(), 404)
	require.Error(t, err)
	require.Equal(t, rs.ErrNotFound, rs.Code(err))
}
