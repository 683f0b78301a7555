// Package config loads server configuration from, in ascending priority,
// built-in defaults, an optional TOML file, and SWIFTLS_-prefixed
// environment variables, following the koanf provider-layering pattern.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// EnvPrefix is the prefix environment variables are read under.
const EnvPrefix = "SWIFTLS_"

// Config is the complete server configuration.
type Config struct {
	Transport TransportConfig `koanf:"transport"`
	Bridge    BridgeConfig    `koanf:"bridge"`
	Log       LogConfig       `koanf:"log"`

	// ConfigFile is metadata recording which file (if any) was loaded; it
	// is not itself a loaded key.
	ConfigFile string `koanf:"-"`
}

// TransportConfig selects and configures the client transport.
type TransportConfig struct {
	// Kind is "stdio" or "websocket".
	Kind string `koanf:"kind"`

	// Address is the listen address when Kind is "websocket".
	Address string `koanf:"address"`

	// Debug logs every JSON-RPC message at debug level, so the messages
	// appear only when Log.Level is "debug".
	Debug bool `koanf:"debug"`
}

// BridgeConfig locates and validates the native-analyzer WASM artifact.
type BridgeConfig struct {
	// WASMPath is the filesystem path to the compiled native-analyzer
	// module.
	WASMPath string `koanf:"wasm-path"`

	// WASMChecksum is the expected sha256 of the artifact at WASMPath,
	// hex-encoded. Empty skips the check.
	WASMChecksum string `koanf:"wasm-checksum"`
}

// LogConfig configures the commonlog backend.
type LogConfig struct {
	// Level is one of commonlog's level names: "none", "critical",
	// "error", "warning", "notice", "info", "debug".
	Level string `koanf:"level"`

	// Path is a file to append log output to; empty logs to stderr.
	Path string `koanf:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Transport: TransportConfig{
			Kind: "stdio",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load layers configFile (if non-empty) and environment variables over the
// defaults and unmarshals the result.
func Load(configFile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, errors.Wrap(err, "load config defaults")
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "load config file %q", configFile)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKeyTransform), nil); err != nil {
		return nil, errors.Wrap(err, "load environment overrides")
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	cfg.ConfigFile = configFile
	return cfg, nil
}

// envKeyTransform converts SWIFTLS_BRIDGE_WASM_PATH into bridge.wasm-path,
// the same underscore-to-dot-and-hyphen folding the config file's own
// hyphenated koanf tags expect.
func envKeyTransform(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", ".")
	for pattern, replacement := range knownHyphenatedKeys {
		s = strings.ReplaceAll(s, pattern, replacement)
	}
	return s
}

var knownHyphenatedKeys = map[string]string{
	"wasm.path":     "wasm-path",
	"wasm.checksum": "wasm-checksum",
}
