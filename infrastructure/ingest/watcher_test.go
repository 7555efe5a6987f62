package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSourceWatcher_CallsBackOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loan_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(header), 0o600))

	w, err := NewSourceWatcher(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	w.WithDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(context.Context) { changed <- struct{}{} })
	}()

	// unrelated files in the same directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x"), 0o600))

	require.Eventually(t, func() bool {
		if err := os.WriteFile(path, []byte(header+"22,female,Master,1,0,RENT,1,PERSONAL,1,1,3,561,0,1\n"), 0o600); err != nil {
			return false
		}
		select {
		case <-changed:
			return true
		case <-time.After(200 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestNewSourceWatcher_MissingDirectory(t *testing.T) {
	_, err := NewSourceWatcher(filepath.Join(t.TempDir(), "nope", "loans.csv"), zaptest.NewLogger(t))

	require.Error(t, err)
}
