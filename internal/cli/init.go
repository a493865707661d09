package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/concierge/internal/paths"
	"github.com/mesh-intelligence/concierge/internal/sqlite"
	"github.com/mesh-intelligence/concierge/pkg/types"
)

func newInitCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize concierge configuration and storage",
		Long: "Create the configuration directory and a default config.yaml if missing.\n" +
			"For the sqlite backend the data directory and database are created too.",
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd, f)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(s.ConfigDir, 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			configPath := paths.ConfigFile(s.ConfigDir)
			written, err := writeConfigIfMissing(configPath, s)
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			if s.Config.Backend == types.BackendSQLite {
				b := sqlite.NewBackend()
				if err := b.Attach(s.Config); err != nil {
					return fmt.Errorf("initialize storage: %w", err)
				}
				if err := b.Detach(); err != nil {
					return fmt.Errorf("finalize storage: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			if written {
				fmt.Fprintf(out, "Wrote %s\n", configPath)
			} else {
				fmt.Fprintf(out, "Using existing %s\n", configPath)
			}
			fmt.Fprintln(out, "Concierge initialized successfully")
			return nil
		},
	}
}
