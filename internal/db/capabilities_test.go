package db

import (
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestCapabilities_MarkLegacyIsSticky(t *testing.T) {
	caps := NewCapabilities()
	require.False(t, caps.Legacy())

	caps.MarkLegacy()
	require.True(t, caps.Legacy())

	caps.MarkLegacy()
	require.True(t, caps.Legacy())
}

func TestCapabilities_ConcurrentMark(t *testing.T) {
	caps := NewCapabilities()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			caps.MarkLegacy()
			_ = caps.Legacy()
		}()
	}
	wg.Wait()

	require.True(t, caps.Legacy())
}

func TestIsUndefinedColumnErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"undefined column", &pgconn.PgError{Code: "42703"}, true},
		{"undefined table", &pgconn.PgError{Code: "42P01"}, true},
		{"wrapped undefined column", errors.Join(errors.New("query"), &pgconn.PgError{Code: "42703"}), true},
		{"other pg error", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("connection refused"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsUndefinedColumnErr(tt.err))
		})
	}
}
