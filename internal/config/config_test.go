package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "stdio", cfg.Transport.Kind)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SWIFTLS_TRANSPORT_KIND", "websocket")
	t.Setenv("SWIFTLS_BRIDGE_WASM_PATH", "/opt/swiftls/native.wasm")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "websocket", cfg.Transport.Kind)
	assert.Equal(t, "/opt/swiftls/native.wasm", cfg.Bridge.WASMPath)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/swiftls.toml"
	require.NoError(t, os.WriteFile(path, []byte("[transport]\nkind = \"websocket\"\naddress = \":4389\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "websocket", cfg.Transport.Kind)
	assert.Equal(t, ":4389", cfg.Transport.Address)
	assert.Equal(t, path, cfg.ConfigFile)
}
