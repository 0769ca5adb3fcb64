// model/reservationModel.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationActive   ReservationStatus = "ACTIVE"
	ReservationReturned ReservationStatus = "RETURNED"
	ReservationOverdue  ReservationStatus = "OVERDUE"
)

type Reservation struct {
	ID                 int64             `json:"id"`
	UserID             int64             `json:"user_id"`
	BookExternalID     int64             `json:"book_external_id"`
	RentalDays         int               `json:"rental_days"`
	StartDate          time.Time         `json:"start_date"`
	ExpectedReturnDate time.Time         `json:"expected_return_date"`
	ActualReturnDate   *time.Time        `json:"actual_return_date,omitempty"`
	DailyRate          decimal.Decimal   `json:"daily_rate"`
	TotalFee           decimal.Decimal   `json:"total_fee"`
	LateFee            *decimal.Decimal  `json:"late_fee,omitempty"`
	Status             ReservationStatus `json:"status"`
	CreatedAt          time.Time         `json:"created_at"`
}

// Finalized reports whether a return has already been recorded. An OVERDUE
// reservation without an actual return date was flagged by the overdue scan
// and can still be returned.
func (r *Reservation) Finalized() bool { return r.ActualReturnDate != nil }
