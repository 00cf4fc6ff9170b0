package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")

	s1, err := NewFileStore(path, discardLogger())
	require.NoError(t, err)
	require.NoError(t, s1.Set(ctx, KeyAuthUser, `{"id":1}`))
	require.NoError(t, s1.Close())

	s2, err := NewFileStore(path, discardLogger())
	require.NoError(t, err)
	defer s2.Close()

	v, ok, err := s2.Get(ctx, KeyAuthUser)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"id":1}`, v)

	require.NoError(t, s2.Remove(ctx, KeyAuthUser))
	_, ok, err = s2.Get(ctx, KeyAuthUser)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path, discardLogger())
	require.Error(t, err)
}

func TestFileStore_WatchReportsOtherWriters(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	path := filepath.Join(t.TempDir(), "storage.json")

	watcher, err := NewFileStore(path, discardLogger())
	require.NoError(t, err)
	defer watcher.Close()
	writer, err := NewFileStore(path, discardLogger())
	require.NoError(t, err)
	defer writer.Close()

	ch, err := watcher.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, writer.Set(ctx, KeySimulatedDate, "2025-02-14"))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-ch:
			if c.Key != KeySimulatedDate {
				continue
			}
			require.NotNil(t, c.NewValue)
			require.Equal(t, "2025-02-14", *c.NewValue)
			return
		case <-deadline:
			t.Fatal("watcher did not observe write")
		}
	}
}

func TestFileStore_WatchIgnoresOwnWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	path := filepath.Join(t.TempDir(), "storage.json")

	s, err := NewFileStore(path, discardLogger())
	require.NoError(t, err)
	defer s.Close()

	ch, err := s.Watch(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeySimulatedDate, "2025-02-14"))

	select {
	case c := <-ch:
		t.Fatalf("unexpected change for own write: %+v", c)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestDiff(t *testing.T) {
	changes := diff(
		map[string]string{"a": "1", "b": "2", "c": "3"},
		map[string]string{"a": "1", "b": "20", "d": "4"},
	)

	got := map[string]*string{}
	for _, c := range changes {
		got[c.Key] = c.NewValue
	}
	require.Len(t, got, 3)
	require.Equal(t, "20", *got["b"])
	require.Equal(t, "4", *got["d"])
	require.Nil(t, got["c"])
}
