package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/and161185/helpdesk/internal/errs"
	"github.com/and161185/helpdesk/internal/model"
	"github.com/and161185/helpdesk/internal/repository"
)

func TestStore_InTx_RollbackRestoresState(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	err := s.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
		if _, err := r.Users().Create(ctx, "a@b.com", "h"); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)
	require.Equal(t, 0, s.UserCount())

	require.Panics(t, func() {
		_ = s.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
			_, _ = r.Users().Create(ctx, "a@b.com", "h")
			panic("boom")
		})
	})
	require.Equal(t, 0, s.UserCount())

	require.NoError(t, s.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
		_, err := r.Users().Create(ctx, "a@b.com", "h")
		return err
	}))
	require.Equal(t, 1, s.UserCount())
}

func TestStore_UsersUniqueIgnoringCase(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	err := s.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
		if _, err := r.Users().Create(ctx, "a@b.com", "h"); err != nil {
			return err
		}
		_, err := r.Users().Create(ctx, "A@B.com", "h")
		return err
	})
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
	require.Equal(t, 0, s.UserCount())
}

func TestStore_SessionExpiry(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return now }), WithSessionTTL(time.Hour))
	ctx := context.Background()

	require.NoError(t, s.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
		u, err := r.Users().Create(ctx, "a@b.com", "h")
		if err != nil {
			return err
		}
		_, err = r.Sessions().Create(ctx, u.ID, "tok")
		return err
	}))

	resolve := func() error {
		return s.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
			_, err := r.Sessions().Resolve(ctx, "tok")
			return err
		})
	}
	require.NoError(t, resolve())

	now = now.Add(time.Hour)
	require.ErrorIs(t, resolve(), errs.ErrNotFound)
	require.Equal(t, 1, s.SessionCount(), "expired sessions linger until swept")

	var n int64
	require.NoError(t, s.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		n, err = r.Sessions().DeleteExpired(ctx)
		return err
	}))
	require.Equal(t, int64(1), n)
	require.Zero(t, s.SessionCount())
}

func TestStore_MessagesOrderAndReply(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return now }))
	ctx := context.Background()

	require.NoError(t, s.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
		for i := 0; i < 3; i++ {
			if _, err := r.Messages().Create(ctx, model.NewMessage{UserID: int64(1 + i%2), UserEmail: "x", Subject: "s", Body: "b"}); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, s.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
		all, err := r.Messages().ListAll(ctx)
		require.NoError(t, err)
		require.Equal(t, []int64{3, 2, 1}, ids(all))

		own, err := r.Messages().ListByUser(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, []int64{3, 1}, ids(own))

		m, err := r.Messages().Reply(ctx, 2, "done")
		require.NoError(t, err)
		require.Equal(t, model.StatusAnswered, m.Status)
		require.True(t, m.Consistent())

		_, err = r.Messages().Reply(ctx, 99, "done")
		require.ErrorIs(t, err, errs.ErrNotFound)
		return nil
	}))
}

func ids(ms []model.Message) []int64 {
	out := make([]int64, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ID)
	}
	return out
}
