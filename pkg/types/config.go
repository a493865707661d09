package types

import (
	"errors"
	"time"
)

// Config selects and parameterizes the backend the stores talk to.
type Config struct {
	Backend string        `json:"backend" yaml:"backend"`
	DataDir string        `json:"data_dir" yaml:"data_dir"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Token   string        `json:"token" yaml:"token"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendHTTP   = "http"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrBaseURLEmpty   = errors.New("base URL is required for the http backend")
	ErrTimeoutInvalid = errors.New("timeout must not be negative")
)

var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendHTTP:   true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendHTTP && c.BaseURL == "" {
		return ErrBaseURLEmpty
	}
	if c.Timeout < 0 {
		return ErrTimeoutInvalid
	}
	return nil
}
