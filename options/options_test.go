package options

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	opts := &SchedulerOptions{}

	assert.Equal(t, time.Second/60, opts.FrameInterval())
	assert.Equal(t, 100*time.Millisecond, opts.NestedCacheTTLDuration())
	assert.Equal(t, "127.0.0.1:53010", opts.OSCAddr())

	// The throttle threshold sits a small margin below the ideal interval so
	// refresh-rate jitter does not drop frames.
	threshold := opts.ThrottleThreshold()
	assert.Less(t, threshold, opts.FrameInterval())
	assert.Greater(t, threshold, 13*time.Millisecond)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gocompositor.toml")
	content := []byte("fps = 30\nnested_cache_ttl = 0.25\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	opts, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, time.Second/30, opts.FrameInterval())
	assert.Equal(t, 250*time.Millisecond, opts.NestedCacheTTLDuration())
	// Keys absent from the file keep their defaults.
	assert.Equal(t, "127.0.0.1:53010", opts.OSCAddr())
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("fps = ["), 0644))
	_, err = LoadFile(path)
	assert.Error(t, err)
}
