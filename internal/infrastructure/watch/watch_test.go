package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	var count atomic.Int32
	d := NewDebouncer(50*time.Millisecond, func() {
		count.Add(1)
	})
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, int32(1), count.Load())
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	var count atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func() {
		count.Add(1)
	})
	d.Trigger()
	d.Stop()
	d.Trigger()
	time.Sleep(80 * time.Millisecond)

	assert.Zero(t, count.Load(), "no callback after Stop")
}

func TestNameFilter(t *testing.T) {
	f := NameFilter{"chamaiState.json", "*.yaml"}
	tests := map[string]bool{
		"/p/.chamai/chamaiState.json":  true,
		"/p/.chamai/config.yaml":       true,
		"/p/.chamai/other.json":        false,
		"/p/.chamai/chamaiState.json~": false,
	}
	for path, want := range tests {
		assert.Equal(t, want, f.Matches(path), path)
	}
	assert.True(t, NameFilter(nil).Matches("anything"), "empty filter accepts everything")
}

func TestFSWatcher_ReportsMatchingWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "chamaiState.json")
	require.NoError(t, os.WriteFile(target, []byte("{}"), 0600))

	var (
		mu     sync.Mutex
		events []ChangeEvent
	)
	w, err := NewFSWatcher(40*time.Millisecond, NameFilter{"chamaiState.json"}, func(e ChangeEvent) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})
	require.NoError(t, err)
	require.NoError(t, w.Add(dir))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(target, []byte(`{"scores":{}}`), 0600))
	time.Sleep(250 * time.Millisecond)
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, events, "expected a change event")
	for _, e := range events {
		assert.Equal(t, "chamaiState.json", filepath.Base(e.Path))
	}
}

func TestFSWatcher_StopsOnCancel(t *testing.T) {
	w, err := NewFSWatcher(0, nil, nil)
	require.NoError(t, err)
	require.NoError(t, w.Add(t.TempDir()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestFSWatcher_AddMissingDir(t *testing.T) {
	w, err := NewFSWatcher(0, nil, nil)
	require.NoError(t, err)
	defer w.Close()
	assert.Error(t, w.Add(filepath.Join(t.TempDir(), "missing")))
}
