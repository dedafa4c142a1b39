package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/chore/internal/adapters/watcher"
	"go.trai.ch/chore/internal/core/ports"
	"go.trai.ch/chore/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestDirectories_SkipsEnvironmentAndState(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"src/pkg", ".git/objects", ".chore/state", "__pycache__", "env/bin"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o750))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "env", "pyvenv.cfg"), []byte("home = /usr/bin\n"), 0o600))

	got := watcher.Directories(root)

	assert.Equal(t, []string{root, filepath.Join(root, "src"), filepath.Join(root, "src", "pkg")}, got)
}

func nextEvent(t *testing.T, events <-chan ports.WatchEvent, path string) ports.WatchEvent {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "event stream closed")
			if ev.Path == path {
				return ev
			}
		case <-deadline:
			t.Fatalf("no event for %s", path)
		}
	}
}

func TestWatcher_Events(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	root := t.TempDir()
	manifest := filepath.Join(root, "requirements.txt")
	require.NoError(t, os.WriteFile(manifest, []byte("requests\n"), 0o600))

	w, err := watcher.NewWatcher(log)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, root))
	defer func() { _ = w.Stop() }()

	events := make(chan ports.WatchEvent)
	go func() {
		defer close(events)
		for ev := range w.Events() {
			events <- ev
		}
	}()

	require.NoError(t, os.WriteFile(manifest, []byte("requests\nrich\n"), 0o600))
	assert.Equal(t, ports.OpWrite, nextEvent(t, events, manifest).Operation)

	sub := filepath.Join(root, "data")
	require.NoError(t, os.Mkdir(sub, 0o750))
	assert.Equal(t, ports.OpCreate, nextEvent(t, events, sub).Operation)

	// New directories are watched once their create event is handled.
	nested := filepath.Join(sub, "run.csv")
	seen := false
	for i := 0; i < 50 && !seen; i++ {
		require.NoError(t, os.WriteFile(nested, []byte("1\n"), 0o600))
		select {
		case ev := <-events:
			seen = ev.Path == nested
		case <-time.After(100 * time.Millisecond):
		}
	}
	assert.True(t, seen, "no event from the new directory")

	cancel()
	for range events {
	}
}
