package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreSetGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(time.Minute)

	store.Set(ctx, "standings", []string{"team-a", "team-b"})

	got, ok := store.Get(ctx, "standings")
	require.True(t, ok)
	require.Equal(t, []string{"team-a", "team-b"}, got)
}

func TestStoreExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(10 * time.Millisecond)

	store.Set(ctx, "standings", 42)
	time.Sleep(25 * time.Millisecond)

	_, ok := store.Get(ctx, "standings")
	require.False(t, ok)
}

func TestStoreZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(0)

	store.Set(ctx, "audit:team-a", "clean")
	time.Sleep(5 * time.Millisecond)

	got, ok := store.Get(ctx, "audit:team-a")
	require.True(t, ok)
	require.Equal(t, "clean", got)
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(time.Minute)

	store.Set(ctx, "standings", 1)
	store.Delete(ctx, "standings")

	_, ok := store.Get(ctx, "standings")
	require.False(t, ok)
}

func TestStoreIgnoresEmptyKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(time.Minute)

	store.Set(ctx, "", "value")
	_, ok := store.Get(ctx, "")
	require.False(t, ok)
}
