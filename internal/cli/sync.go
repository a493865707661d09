package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/concierge/pkg/types"
)

func newSyncCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch every collection and show what is cached",
		Long: "Sync refreshes all collections concurrently. Each collection keeps its own\n" +
			"error, so one failing collection does not hide the others.",
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, f)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, cancel := s.withTimeout(cmd.Context())
			defer cancel()
			syncErr := s.stores.FetchAll(ctx)

			summary := map[string]any{}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if !f.jsonMode {
				fmt.Fprintln(tw, "COLLECTION\tCOUNT\tERROR")
			}
			for _, name := range types.StandardCollections {
				ops, err := s.binding(name)
				if err != nil {
					return err
				}
				msg := ops.message()
				if f.jsonMode {
					summary[name.Plural] = map[string]any{"count": ops.size(), "error": msg}
					continue
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\n", name.Plural, ops.size(), msg)
			}
			if f.jsonMode {
				if err := writeJSON(cmd.OutOrStdout(), summary); err != nil {
					return err
				}
			} else if err := tw.Flush(); err != nil {
				return err
			}
			return syncErr
		},
	}
}
