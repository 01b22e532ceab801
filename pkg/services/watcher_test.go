package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestContentWatcherReimports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "articles", "first.md"), "---\ntitle: First\n---\n")

	store := openStore(t)
	importer := NewImporter(store, zap.NewNop())
	_, err := importer.ImportDir(context.Background(), dir)
	require.NoError(t, err)

	imported := make(chan struct{}, 4)
	w, err := NewContentWatcher(dir, importer, func() {
		select {
		case imported <- struct{}{}:
		default:
		}
	}, zap.NewNop())
	require.NoError(t, err)
	w.debounceDur = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	writeFile(t, filepath.Join(dir, "articles", "second.md"), "---\ntitle: Second\n---\n")
	writeFile(t, filepath.Join(dir, "articles", "ignored.txt"), "x")

	select {
	case <-imported:
	case <-time.After(5 * time.Second):
		t.Fatal("no re-import after a content change")
	}

	c := NewCatalog(store, nil, 0, zap.NewNop())
	assert.Eventually(t, func() bool {
		return len(c.Articles(context.Background(), Selection{}).Items) == 2
	}, 5*time.Second, 20*time.Millisecond)
}

func TestContentWatcherStopIsIdempotent(t *testing.T) {
	w, err := NewContentWatcher(t.TempDir(), NewImporter(openStore(t), zap.NewNop()), nil, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
}

func TestContentWatcherStopAfterFailedStartReturns(t *testing.T) {
	w, err := NewContentWatcher(filepath.Join(t.TempDir(), "missing"), NewImporter(openStore(t), zap.NewNop()), nil, zap.NewNop())
	require.NoError(t, err)

	require.Error(t, w.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked after a failed Start")
	}

	// A failed watcher stays stopped.
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
}

func TestContentWatcherStopWithoutStart(t *testing.T) {
	w, err := NewContentWatcher(t.TempDir(), NewImporter(openStore(t), zap.NewNop()), nil, zap.NewNop())
	require.NoError(t, err)
	w.Stop()
	w.Stop()
}
