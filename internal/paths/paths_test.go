package paths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withHome points the home directory lookup at dir for the test.
func withHome(t *testing.T, dir string) {
	t.Helper()
	orig := platformDir.homeDir
	platformDir.homeDir = func() (string, error) { return dir, nil }
	t.Cleanup(func() { platformDir.homeDir = orig })
}

func TestDefaultConfigDir_Linux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux-only test")
	}

	t.Run("uses XDG_CONFIG_HOME when set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
		got, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/xdg-config/concierge", got)
	})

	t.Run("falls back to ~/.config when XDG unset", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		withHome(t, "/home/frontdesk")

		got, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/home/frontdesk/.config/concierge", got)
	})

	t.Run("home lookup failure", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		orig := platformDir.homeDir
		platformDir.homeDir = func() (string, error) { return "", errors.New("no home") }
		t.Cleanup(func() { platformDir.homeDir = orig })

		_, err := DefaultConfigDir()
		assert.Error(t, err)
	})
}

func TestDefaultDataDir_Linux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux-only test")
	}

	t.Run("uses XDG_DATA_HOME when set", func(t *testing.T) {
		t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
		got, err := DefaultDataDir()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/xdg-data/concierge", got)
	})

	t.Run("falls back to ~/.local/share when XDG unset", func(t *testing.T) {
		t.Setenv("XDG_DATA_HOME", "")
		withHome(t, "/home/frontdesk")

		got, err := DefaultDataDir()
		require.NoError(t, err)
		assert.Equal(t, "/home/frontdesk/.local/share/concierge", got)
	})
}

func TestDefaultDirs_Darwin(t *testing.T) {
	if runtime.GOOS != "darwin" {
		t.Skip("darwin-only test")
	}

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	support := filepath.Join(home, "Library", "Application Support", "concierge")

	got, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, support, got)

	got, err = DefaultDataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(support, "data"), got)
}

func TestResolveConfigDir(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		envVal  string
		wantSub string
	}{
		{"flag wins over env", "/explicit/config", "/env/config", "/explicit/config"},
		{"env wins when flag empty", "", "/env/config", "/env/config"},
		{"platform default when both empty", "", "", "concierge"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.envVal)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Contains(t, got, tt.wantSub)
		})
	}
}

func TestResolveConfigDir_AbsolutePath(t *testing.T) {
	t.Setenv(EnvConfigDir, "relative/env")
	got, err := ResolveConfigDir("")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
}

func TestResolveDataDir(t *testing.T) {
	withHome(t, "/home/frontdesk")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	tests := []struct {
		name        string
		flag        string
		configValue string
		configDir   string
		envVal      string
		want        string
	}{
		{"flag wins over all", "/flag/data", "/config/data", "/etc/concierge", "/env/data", "/flag/data"},
		{"config value wins over env", "", "/config/data", "/etc/concierge", "/env/data", "/config/data"},
		{"relative config value joins config dir", "", "db", "/etc/concierge", "/env/data", "/etc/concierge/db"},
		{"home in config value", "", "~/concierge-db", "/etc/concierge", "", "/home/frontdesk/concierge-db"},
		{"env wins when flag and config empty", "", "", "/etc/concierge", "/env/data", "/env/data"},
		{"home in flag", "~/db", "", "", "", "/home/frontdesk/db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.envVal)
			got, err := ResolveDataDir(tt.flag, tt.configValue, tt.configDir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDataDir_PlatformDefault(t *testing.T) {
	t.Setenv(EnvDataDir, "")
	want, err := DefaultDataDir()
	require.NoError(t, err)

	got, err := ResolveDataDir("", "", "")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestConfigFile(t *testing.T) {
	assert.Equal(t, filepath.Join("/etc/concierge", "config.yaml"), ConfigFile("/etc/concierge"))
}
