package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/helpdesk/internal/repository"
	"github.com/and161185/helpdesk/internal/repository/memory"
)

func seed(t *testing.T, s *memory.Store, tokens ...string) {
	t.Helper()
	require.NoError(t, s.InTx(context.Background(), func(ctx context.Context, r repository.Repos) error {
		u, err := r.Users().Create(ctx, "u@x.com", "h")
		if err != nil {
			return err
		}
		for _, tok := range tokens {
			if _, err := r.Sessions().Create(ctx, u.ID, tok); err != nil {
				return err
			}
		}
		return nil
	}))
}

func TestSweeper_Sweep(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.New(memory.WithClock(func() time.Time { return now }), memory.WithSessionTTL(time.Hour))
	seed(t, store, "a", "b")

	sw := New(store, "", zaptest.NewLogger(t))

	n, err := sw.Sweep(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
	require.Equal(t, 2, store.SessionCount())

	now = now.Add(2 * time.Hour)
	n, err = sw.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	require.Zero(t, store.SessionCount())
}

func TestSweeper_StartStop(t *testing.T) {
	t.Parallel()

	sw := New(memory.New(), "@every 1h", zaptest.NewLogger(t))
	require.NoError(t, sw.Start())
	sw.Stop()

	bad := New(memory.New(), "every now and then", nil)
	require.Error(t, bad.Start())
}
