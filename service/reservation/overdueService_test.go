package reservation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	rs "libreria/service/reservation"
)

type overdueRepoMock struct {
	markOverdueFn func(ctx context.Context, today time.Time) (int64, error)
}

func (m *overdueRepoMock) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	return m.markOverdueFn(ctx, today)
}

func TestScanOverdue(t *testing.T) {
	var got time.Time
	m := &overdueRepoMock{
		markOverdueFn: func(ctx context.Context, today time.Time) (int64, error) {
			got = today
			return 2, nil
		},
	}
	s := rs.NewScanner(m)

	n, err := s.ScanOverdue(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	// The cutoff is a calendar date, midnight UTC.
	require.Equal(t, time.UTC, got.Location())
	h, min, sec := got.Clock()
	require.Zero(t, h)
	require.Zero(t, min)
	require.Zero(t, sec)
}
