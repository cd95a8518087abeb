package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/tusk-sub001/internal/testutil"
)

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schemas: [first]\n"), 0o644))

	initial, err := LoadFile(path)
	require.NoError(t, err)
	store := NewStore(initial, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, store, testutil.NewTestLogger(t)) }()

	// the watcher may not be registered yet; rewrite until it notices
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("schemas: [second]\n"), 0o644)
		return store.Current().HasSchema("second")
	}, 5*time.Second, 50*time.Millisecond)

	// a broken file keeps the last good snapshot
	require.NoError(t, os.WriteFile(path, []byte("tables: [{schema: x}]\n"), 0o644))
	time.Sleep(3 * reloadDelay)
	assert.True(t, store.Current().HasSchema("second"))

	// unrelated files in the directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("schemas: [third]\n"), 0o644))
	time.Sleep(3 * reloadDelay)
	assert.False(t, store.Current().HasSchema("third"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "no", "catalog.yaml"), NewStore(nil, nil), nil)
	require.Error(t, err)
}
