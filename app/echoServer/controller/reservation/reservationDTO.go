package reservation

import (
	"time"

	"github.com/shopspring/decimal"

	"libreria/model"
)

const dateLayout = "2006-01-02"

type CreateReservationReq struct {
	UserID         int64  `json:"user_id" validate:"required,gt=0"`
	BookExternalID int64  `json:"book_external_id" validate:"required,gt=0"`
	RentalDays     int    `json:"rental_days" validate:"required,gt=0"`
	StartDate      string `json:"start_date" validate:"required,datetime=2006-01-02"`
}

type ReturnBookReq struct {
	ReturnDate string `json:"return_date" validate:"required,datetime=2006-01-02"`
}

type ReservationResp struct {
	ID                 int64            `json:"id"`
	UserID             int64            `json:"user_id"`
	BookExternalID     int64            `json:"book_external_id"`
	RentalDays         int              `json:"rental_days"`
	StartDate          string           `json:"start_date"`
	ExpectedReturnDate string           `json:"expected_return_date"`
	ActualReturnDate   *string          `json:"actual_return_date,omitempty"`
	DailyRate          decimal.Decimal  `json:"daily_rate"`
	TotalFee           decimal.Decimal  `json:"total_fee"`
	LateFee            *decimal.Decimal `json:"late_fee,omitempty"`
	Status             string           `json:"status"`
	CreatedAt          time.Time        `json:"created_at"`
}

func toResp(r *model.Reservation) ReservationResp {
	out := ReservationResp{
		ID:                 r.ID,
		UserID:             r.UserID,
		BookExternalID:     r.BookExternalID,
		RentalDays:         r.RentalDays,
		StartDate:          r.StartDate.Format(dateLayout),
		ExpectedReturnDate: r.ExpectedReturnDate.Format(dateLayout),
		DailyRate:          r.DailyRate,
		TotalFee:           r.TotalFee,
		LateFee:            r.LateFee,
		Status:             string(r.Status),
		CreatedAt:          r.CreatedAt,
	}
	if r.ActualReturnDate != nil {
		d := r.ActualReturnDate.Format(dateLayout)
		out.ActualReturnDate = &d
	}
	return out
}

func toRespList(rs []model.Reservation) []ReservationResp {
	out := make([]ReservationResp, 0, len(rs))
	for i := range rs {
		out = append(out, toResp(&rs[i]))
	}
	return out
}
