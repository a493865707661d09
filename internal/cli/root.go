// Package cli implements the concierge command-line interface: a front desk
// tool that manages the building's residents, packages, notifications and
// social posts through resource stores.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/concierge/pkg/store"
	"github.com/mesh-intelligence/concierge/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	baseURL   string
	logLevel  string
	jsonMode  bool
	serial    bool
}

// NewRootCmd creates the top-level "concierge" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:   "concierge",
		Short: "Front desk tool for a residential building",
		Long: "Concierge manages residents, packages, notifications and social posts\n" +
			"against the building service or a local database.",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&f.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&f.dataDir, "data-dir", "", "data directory for the sqlite backend")
	pf.StringVar(&f.backend, "backend", "", "backend to use: sqlite or http (default: sqlite)")
	pf.StringVar(&f.baseURL, "base-url", "", "building service URL for the http backend")
	pf.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error (default: warn)")
	pf.BoolVar(&f.jsonMode, "json", false, "output in JSON format")
	pf.BoolVar(&f.serial, "serial", false, "run store operations one at a time")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(f))
	for _, name := range types.StandardCollections {
		root.AddCommand(newCollectionCmd(f, name))
	}
	root.AddCommand(newSyncCmd(f))
	root.AddCommand(newWatchCmd(f))
	root.AddCommand(newExportCmd(f))
	root.AddCommand(newImportCmd(f))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		stop()
		os.Exit(exitCode(err))
	}
}

// usageError marks a mistake in the command line itself.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

// exactArgs is cobra.ExactArgs with failures reported as usage errors.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// exitCode maps an error to the process exit code. Failures the user can fix
// by changing the request exit 1; everything else exits 2.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ue usageError
	if errors.As(err, &ue) {
		return exitUserError
	}
	var se *store.Error
	if errors.As(err, &se) {
		switch se.Kind {
		case store.KindNotFound, store.KindInvalid, store.KindConflict:
			return exitUserError
		}
		return exitSysError
	}
	switch {
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidData),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrConflict),
		errors.Is(err, types.ErrBackendEmpty),
		errors.Is(err, types.ErrBackendUnknown),
		errors.Is(err, types.ErrBaseURLEmpty),
		errors.Is(err, types.ErrTimeoutInvalid):
		return exitUserError
	}
	return exitSysError
}
