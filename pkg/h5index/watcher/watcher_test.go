package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jamesainslie/h5index/pkg/h5index/container/containertest"
	"github.com/jamesainslie/h5index/pkg/h5index/dataset"
	"github.com/jamesainslie/h5index/pkg/h5index/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNew_RejectsMissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing")}, time.Millisecond, nil)
	assert.Error(t, err)
}

func TestNew_RejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.h5")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := New([]string{path}, time.Millisecond, nil)
	assert.Error(t, err)
}

func TestWatcher_Relevant(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir}, time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	tests := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{name: "a.h5", op: fsnotify.Create, want: true},
		{name: "a.hdf5", op: fsnotify.Write, want: true},
		{name: "a.h5", op: fsnotify.Remove, want: true},
		{name: "a.h5", op: fsnotify.Chmod, want: false},
		{name: "notes.txt", op: fsnotify.Create, want: false},
		{name: manifest.FileName, op: fsnotify.Write, want: false},
		{name: manifest.FileName + ".tmp", op: fsnotify.Create, want: false},
		{name: ".partial.h5", op: fsnotify.Create, want: false},
	}
	for _, tt := range tests {
		event := fsnotify.Event{Name: filepath.Join(dir, tt.name), Op: tt.op}
		assert.Equal(t, tt.want, w.relevant(event), "%s %s", tt.op, tt.name)
	}
}

func TestWatcher_RebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	opener := containertest.NewOpener()
	require.NoError(t, opener.Add(filepath.Join(dir, "a.h5"), containertest.Dataset("image", 4, 2)))

	initial, err := dataset.NewDataset([]string{dir}, "image", dataset.WithOpener(opener))
	require.NoError(t, err)
	require.Equal(t, 4, initial.Length())

	w, err := New([]string{dir}, 50*time.Millisecond, nil)
	require.NoError(t, err)
	assert.Len(t, w.Paths(), 1)

	rebuilt := make(chan *dataset.Dataset, 4)
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Run(ctx, RebuildFunc([]string{dir}, "image", dataset.WithOpener(opener)), func(ds *dataset.Dataset, err error) {
			if assert.NoError(t, err) {
				rebuilt <- ds
			}
		})
	}()

	require.NoError(t, opener.Add(filepath.Join(dir, "b.h5"), containertest.Dataset("image", 6, 2)))

	select {
	case ds := <-rebuilt:
		assert.Equal(t, 10, ds.Length())
		assert.True(t, ds.Validate())
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild after adding a container file")
	}

	cancel()
	wg.Wait()
	require.NoError(t, w.Close())

	loaded, err := manifest.Load(manifest.PathFor(dir))
	require.NoError(t, err)
	assert.Len(t, loaded.Files, 2)
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir}, 20*time.Millisecond, nil)
	require.NoError(t, err)

	calls := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, func() (*dataset.Dataset, error) {
			calls <- struct{}{}
			return nil, nil
		}, nil)
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(manifest.PathFor(dir), []byte("files: []\n"), 0o644))

	select {
	case <-calls:
		t.Fatal("rebuild triggered by a non-container file")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	<-done
	require.NoError(t, w.Close())
}

func TestWatcher_CloseStopsRun(t *testing.T) {
	w, err := New([]string{t.TempDir()}, time.Millisecond, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(context.Background(), func() (*dataset.Dataset, error) { return nil, nil }, nil)
	}()

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}
