package reservation

import (
	"context"
	"time"
)

type OverdueRepo interface {
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)
}

// Scanner reclassifies ACTIVE reservations whose expected return date has
// passed into OVERDUE. The late fee stays unset until the actual return.
type Scanner interface {
	ScanOverdue(ctx context.Context) (int64, error)
}

type scanner struct {
	r OverdueRepo
}

func NewScanner(r OverdueRepo) Scanner { return &scanner{r: r} }

func (s *scanner) ScanOverdue(ctx context.Context) (int64, error) {
	return s.r.MarkOverdue(ctx, dateOnly(time.Now().UTC()))
}
