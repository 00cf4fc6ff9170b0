package simdate

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

var fixedNow = func() time.Time { return time.Date(2025, 3, 10, 9, 30, 0, 0, time.Local) }

func newState(t *testing.T, store storage.Store) *State {
	t.Helper()
	return New(context.Background(), store, slog.New(slog.NewTextHandler(io.Discard, nil)), WithClock(fixedNow))
}

func strp(s string) *string { return &s }

func TestNew_DefaultsToTodayWithoutWriting(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	s := newState(t, store)

	require.Equal(t, "2025-03-10", s.Value())
	require.False(t, s.IsSimulated())

	_, ok, _ := store.Get(ctx, storage.KeySimulatedDate)
	require.False(t, ok)
}

func TestNew_RestoresStoredDate(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.KeySimulatedDate, "2024-12-25"))

	s := newState(t, store)
	require.Equal(t, "2024-12-25", s.Value())
	require.True(t, s.IsSimulated())
}

func TestSet_MirrorsToStorage(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	s := newState(t, store)

	require.NoError(t, s.Set(ctx, strp("2024-02-29")))
	v, ok, _ := store.Get(ctx, storage.KeySimulatedDate)
	require.True(t, ok)
	require.Equal(t, "2024-02-29", v)

	require.NoError(t, s.Set(ctx, nil))
	require.Nil(t, s.Date())
	require.False(t, s.IsSimulated())
	_, ok, _ = store.Get(ctx, storage.KeySimulatedDate)
	require.False(t, ok)
}

func TestResetToToday(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	s := newState(t, store)
	require.NoError(t, s.Set(ctx, strp("2020-01-01")))

	require.NoError(t, s.ResetToToday(ctx))
	require.Equal(t, "2025-03-10", s.Value())
	require.False(t, s.IsSimulated())

	v, ok, _ := store.Get(ctx, storage.KeySimulatedDate)
	require.True(t, ok)
	require.Equal(t, "2025-03-10", v)
}

func TestApply_OnlySimulatedDateKey(t *testing.T) {
	s := newState(t, storage.NewMemoryStore())

	require.False(t, s.Apply(storage.Change{Key: storage.KeyAuthUser, NewValue: strp("x")}))
	require.Equal(t, "2025-03-10", s.Value())

	require.True(t, s.Apply(storage.Change{Key: storage.KeySimulatedDate, NewValue: strp("2024-11-11")}))
	require.Equal(t, "2024-11-11", s.Value())

	require.True(t, s.Apply(storage.Change{Key: storage.KeySimulatedDate}))
	require.Nil(t, s.Date())
}

func TestSync_FollowsOtherTab(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tab1 := storage.NewMemoryStore()
	tab2 := tab1.Sibling()
	s1 := newState(t, tab1)
	s2 := newState(t, tab2)

	changed := make(chan *string, 1)
	require.NoError(t, s2.Sync(ctx, func(d *string) { changed <- d }))

	require.NoError(t, s1.Set(ctx, strp("2024-05-05")))

	select {
	case d := <-changed:
		require.Equal(t, "2024-05-05", *d)
	case <-time.After(time.Second):
		t.Fatal("second tab did not follow")
	}
	require.Equal(t, "2024-05-05", s2.Value())
}

func TestParse(t *testing.T) {
	cases := map[string]bool{
		"2024-12-25": true,
		"2024-02-30": false,
		"25/12/2024": false,
		"":           false,
	}
	for in, ok := range cases {
		_, err := Parse(in)
		if ok {
			require.NoError(t, err, in)
		} else {
			require.Error(t, err, in)
		}
	}
}

func TestFromContextPanicsWithoutProvider(t *testing.T) {
	require.Panics(t, func() { FromContext(context.Background()) })

	s := newState(t, storage.NewMemoryStore())
	require.Same(t, s, FromContext(Provide(context.Background(), s)))
}
