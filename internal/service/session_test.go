package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionValidator_RejectsWithoutStoreAccess(t *testing.T) {
	t.Parallel()

	st := &stubStore{err: errors.New("must not be called")}
	v := NewSessionValidator(st)

	for _, tok := range []string{"", strings.Repeat("a", MaxTokenLen+1)} {
		_, ok, err := v.Resolve(context.Background(), tok)
		require.NoError(t, err)
		require.False(t, ok)
	}
	require.Zero(t, st.calls)
}

func TestSessionValidator_StoreErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	v := NewSessionValidator(&stubStore{err: boom})
	_, ok, err := v.Resolve(context.Background(), "tok")
	require.ErrorIs(t, err, boom)
	require.False(t, ok)
}

func TestSessionValidator_Resolve(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.auth.Register(ctx, "u@x.com", "abcdef")
	require.NoError(t, err)

	v := NewSessionValidator(e.store)
	id, ok, err := v.Resolve(ctx, res.Token)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "u@x.com", id.Email)
	require.False(t, id.IsAdmin)

	_, ok, err = v.Resolve(ctx, "unknown")
	require.NoError(t, err)
	require.False(t, ok)

	// admin flag is read live on every resolution
	require.True(t, e.store.SetAdmin("u@x.com", true))
	id, ok, err = v.Resolve(ctx, res.Token)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, id.IsAdmin)
}
