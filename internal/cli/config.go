package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/concierge/internal/paths"
	"github.com/mesh-intelligence/concierge/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "CONCIERGE"

	cfgKeyBackend   = "backend"
	cfgKeyDataDir   = "data_dir"
	cfgKeyBaseURL   = "base_url"
	cfgKeyToken     = "token"
	cfgKeyTimeout   = "timeout"
	cfgKeyLogLevel  = "log_level"
	cfgKeyLogFormat = "log_format"

	defaultTimeout   = 10 * time.Second
	defaultLogLevel  = "warn"
	defaultLogFormat = "console"
)

// configFile is the structure written to config.yaml by init.
type configFile struct {
	Backend   string `yaml:"backend"`
	DataDir   string `yaml:"data_dir,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Timeout   string `yaml:"timeout"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// settings is the resolved configuration of one invocation.
type settings struct {
	ConfigDir string
	Config    types.Config
	LogLevel  string
	LogFormat string
}

// loadSettings merges flags, CONCIERGE_* environment variables, config.yaml
// and defaults, in that order of precedence. A missing config.yaml is not an
// error.
func loadSettings(cmd *cobra.Command, f *rootFlags) (settings, error) {
	configDir, err := paths.ResolveConfigDir(f.configDir)
	if err != nil {
		return settings{}, fmt.Errorf("resolving config dir: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyTimeout, defaultTimeout)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyLogFormat, defaultLogFormat)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	pf := cmd.Root().PersistentFlags()
	for key, flag := range map[string]string{
		cfgKeyBackend:  "backend",
		cfgKeyBaseURL:  "base-url",
		cfgKeyLogLevel: "log-level",
	} {
		if err := v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			return settings{}, fmt.Errorf("binding --%s: %w", flag, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return settings{}, fmt.Errorf("reading config: %w", err)
		}
	}

	dataDir, err := paths.ResolveDataDir(f.dataDir, v.GetString(cfgKeyDataDir), configDir)
	if err != nil {
		return settings{}, fmt.Errorf("resolving data dir: %w", err)
	}

	s := settings{
		ConfigDir: configDir,
		Config: types.Config{
			Backend: v.GetString(cfgKeyBackend),
			DataDir: dataDir,
			BaseURL: v.GetString(cfgKeyBaseURL),
			Token:   v.GetString(cfgKeyToken),
			Timeout: v.GetDuration(cfgKeyTimeout),
		},
		LogLevel:  v.GetString(cfgKeyLogLevel),
		LogFormat: v.GetString(cfgKeyLogFormat),
	}
	if err := s.Config.Validate(); err != nil {
		return settings{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}

// writeConfigIfMissing creates config.yaml from s if the file does not exist.
// It reports whether a file was written.
func writeConfigIfMissing(path string, s settings) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := configFile{
		Backend:   s.Config.Backend,
		DataDir:   s.Config.DataDir,
		BaseURL:   s.Config.BaseURL,
		Timeout:   s.Config.Timeout.String(),
		LogLevel:  s.LogLevel,
		LogFormat: s.LogFormat,
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# Concierge configuration. Flags and CONCIERGE_* variables override these values.\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
