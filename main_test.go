package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hopscotch/config"
)

func TestRoundsCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"rounds"})
	require.NoError(t, cmd.Execute())

	var rounds []struct {
		ID    int      `json:"id"`
		Moves []string `json:"moves"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &rounds))
	require.Len(t, rounds, 8)
	assert.Equal(t, []string{"Hop", "Hop", "Hop", "Jump", "Hop", "Skip-HopLeft"}, rounds[7].Moves)
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hopscotch.yaml")
	run := func(args ...string) error {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	require.NoError(t, run("config", "init", "--path", path))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Room, cfg.Room)

	assert.Error(t, run("config", "init", "--path", path), "existing file is kept without --force")
	require.NoError(t, run("config", "init", "--path", path, "--force"))
}
