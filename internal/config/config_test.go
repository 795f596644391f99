package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig_LoadMissingFileReturnsDefault(t *testing.T) {
	cfg, found := Load(filepath.Join(t.TempDir(), "nonexistent.toml"))
	require.False(t, found)
	require.Equal(t, Default(), cfg)
}

func TestConfig_SaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	want := Default()
	want.WindowScale = 5
	want.DefaultCGB = false
	want.Keys.A = "K"

	require.NoError(t, Save(want, path))

	got, found := Load(path)
	require.True(t, found)
	require.Equal(t, want, got)
}
