package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestWatchChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	other := filepath.Join(dir, "other.toml")
	require.NoError(t, os.WriteFile(path, []byte("log_level = \"info\"\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	log := zerolog.Nop()
	events := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() { done <- WatchChanges(ctx, &log, path, events) }()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o600))
	select {
	case <-events:
		t.Fatal("unrelated file triggered an event")
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte("log_level = \"debug\"\n"), 0o600))
	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatal("no event for config write")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchChanges_MissingDirectory(t *testing.T) {
	log := zerolog.Nop()
	err := WatchChanges(context.Background(), &log, filepath.Join(t.TempDir(), "nope", "config.toml"), make(chan struct{}, 1))
	require.Error(t, err)
}
