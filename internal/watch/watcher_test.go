package watch

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	path    string
	reloads atomic.Int64
}

func (s *stubStore) Path() string { return s.path }

func (s *stubStore) Reload() error {
	s.reloads.Add(1)
	return nil
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	store := &stubStore{path: filepath.Join(dir, "tasks.json")}
	require.NoError(t, os.WriteFile(store.path, []byte("{}"), 0o644))

	w := New(dir, log.New(os.Stderr, "", 0), store)
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// give the watcher a moment to register
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(store.path, []byte(`{"tasks":{}}`), 0o644))

	assert.Eventually(t, func() bool {
		return store.reloads.Load() >= 1
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatcher_ReloadsOnRemove(t *testing.T) {
	dir := t.TempDir()
	store := &stubStore{path: filepath.Join(dir, "tasks.json")}
	require.NoError(t, os.WriteFile(store.path, []byte("{}"), 0o644))

	w := New(dir, log.New(os.Stderr, "", 0), store)
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.Remove(store.path))

	assert.Eventually(t, func() bool {
		return store.reloads.Load() >= 1
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_IgnoresTempAndUnwatchedFiles(t *testing.T) {
	dir := t.TempDir()
	store := &stubStore{path: filepath.Join(dir, "tasks.json")}

	w := New(dir, log.New(os.Stderr, "", 0), store)
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.json.tmp"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.json"), []byte("x"), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, store.reloads.Load())
}

func TestWatcher_AtomicRenameTriggersReload(t *testing.T) {
	dir := t.TempDir()
	store := &stubStore{path: filepath.Join(dir, "tasks.json")}
	require.NoError(t, os.WriteFile(store.path, []byte("{}"), 0o644))

	w := New(dir, log.New(os.Stderr, "", 0), store)
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)

	// the file repos save via tmp-write plus rename
	tmp := store.path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(`{"tasks":{}}`), 0o644))
	require.NoError(t, os.Rename(tmp, store.path))

	assert.Eventually(t, func() bool {
		return store.reloads.Load() >= 1
	}, 3*time.Second, 20*time.Millisecond)
}
