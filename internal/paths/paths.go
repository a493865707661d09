// Package paths resolves where concierge keeps its configuration and its
// local database.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// AppName is the directory name used under the platform config and data roots.
const AppName = "concierge"

// ConfigFileName is the name of the configuration file in the config dir.
const ConfigFileName = "config.yaml"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "CONCIERGE_CONFIG_DIR"
	EnvDataDir   = "CONCIERGE_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/concierge (fallback ~/.config/concierge)
// macOS:   ~/Library/Application Support/concierge
// Windows: %APPDATA%/concierge
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/concierge (fallback ~/.local/share/concierge)
// macOS:   ~/Library/Application Support/concierge/data
// Windows: %APPDATA%/concierge/data
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName, "data"), nil
}

func xdgDir(env, homeRel string) (string, error) {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, AppName), nil
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > CONCIERGE_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > data_dir from config.yaml > CONCIERGE_DATA_DIR env > DefaultDataDir().
//
// A relative data_dir in config.yaml is taken relative to configDir, so a
// config directory can be moved together with its database.
func ResolveDataDir(flag, configValue, configDir string) (string, error) {
	if flag != "" {
		return abs(flag)
	}
	if configValue != "" {
		configValue = expandHome(configValue)
		if !filepath.IsAbs(configValue) && configDir != "" {
			return filepath.Join(configDir, configValue), nil
		}
		return abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return abs(env)
	}
	return DefaultDataDir()
}

// ConfigFile returns the path of the configuration file in dir.
func ConfigFile(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}

func abs(p string) (string, error) {
	return filepath.Abs(expandHome(p))
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(p string) string {
	rest, ok := strings.CutPrefix(p, "~/")
	if !ok {
		return p
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, rest)
}
