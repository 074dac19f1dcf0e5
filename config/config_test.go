package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hopscotch.yaml")
	data := []byte(`
addr: ":9090"
room:
  ticks_per_second: 10
  playback_every_ticks: 5
session:
  validation: submit
  seed: 7
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 10, cfg.Room.TicksPerSecond)
	assert.Equal(t, 5, cfg.Room.PlaybackEveryTicks)
	assert.Equal(t, 4, cfg.Room.MaxInputsPerTick, "unset keys keep defaults")
	assert.Equal(t, "submit", cfg.Session.Validation)
	assert.Equal(t, int64(7), cfg.Session.Seed)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOPSCOTCH_ADDR", ":7000")
	t.Setenv("HOPSCOTCH_LOG_LEVEL", "warn")
	t.Setenv("HOPSCOTCH_ROOM_MAX_INPUTS_PER_TICK", "9")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 9, cfg.Room.MaxInputsPerTick)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  validation: sometimes\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("room: [1, 2"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "cfg.yaml")
	cfg := DefaultConfig()
	cfg.Room.TicksPerSecond = 30
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, got.Room.TicksPerSecond)
}
