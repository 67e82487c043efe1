package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: first\nsteps: []\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loaded := make(chan string, 4)
	done := make(chan error, 1)
	w := &Watcher{Path: path, Debounce: 20 * time.Millisecond}
	go func() {
		done <- w.Watch(ctx, func(sc *Scenario, err error) {
			if err != nil {
				loaded <- "error"
				return
			}
			loaded <- sc.Name
		})
	}()

	require.Equal(t, "first", waitFor(t, loaded))

	require.NoError(t, os.WriteFile(path, []byte("name: second\nsteps: []\n"), 0o600))
	require.Equal(t, "second", waitFor(t, loaded))

	require.NoError(t, os.WriteFile(path, []byte("steps: ["), 0o600))
	require.Equal(t, "error", waitFor(t, loaded))

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func waitFor(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
		return ""
	}
}
