package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")

	s, err := NewFileStorage(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())

	_, ok := s.GetItem("darkMode")
	assert.False(t, ok, "missing file reads as empty")

	require.NoError(t, s.SetItem("darkMode", "true"))
	require.NoError(t, s.SetItem(LocationKey, "/project/a"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := NewFileStorage(path, nil)
	require.NoError(t, err)
	v, ok := reopened.GetItem("darkMode")
	assert.True(t, ok)
	assert.Equal(t, "true", v)
	v, _ = reopened.GetItem(LocationKey)
	assert.Equal(t, "/project/a", v)
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewFileStorage(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding storage")
}

func TestFileStorage_WatchReloadsExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")

	s, err := NewFileStorage(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetItem("darkMode", "false"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed, err := s.Watch(ctx)
	require.NoError(t, err)

	// Another process writes the file.
	require.NoError(t, os.WriteFile(path, []byte(`{"darkMode":"true"}`), 0600))

	assert.Eventually(t, func() bool {
		v, _ := s.GetItem("darkMode")
		return v == "true"
	}, 2*time.Second, 10*time.Millisecond)

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("expected change notification")
	}

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-changed:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond, "channel closes after ctx is done")
}

func TestFileStorage_ReloadKeepsConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")

	s, err := NewFileStorage(path, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			assert.NoError(t, s.SetItem(fmt.Sprintf("key-%d", i), "v"))
		}
	}()

	for reloading := true; reloading; {
		select {
		case <-done:
			reloading = false
		default:
			_, err := s.reload()
			require.NoError(t, err)
		}
	}

	for i := 0; i < 50; i++ {
		_, ok := s.GetItem(fmt.Sprintf("key-%d", i))
		assert.True(t, ok, "key-%d survives reloads", i)
	}

	changed, err := s.reload()
	require.NoError(t, err)
	assert.False(t, changed, "cache matches the file")
}
