package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCmd(f *rootFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <collection>",
		Short: "Write a collection snapshot to a JSONL file",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := lookupCollection(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = name.Plural + ".jsonl"
			}
			return withCollection(cmd, f, name, func(s *session, ops collectionOps) error {
				ctx, cancel := s.withTimeout(cmd.Context())
				defer cancel()
				n, err := ops.export(ctx, out)
				if err != nil {
					return err
				}
				if f.jsonMode {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"collection": name.Plural, "exported": n, "file": out})
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d %s to %s.\n", n, name.Plural, out)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: <collection>.jsonl)")
	return cmd
}

func newImportCmd(f *rootFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import <collection>",
		Short: "Create entities from a JSONL file",
		Long: "Import creates one entity per line of the file. Lines are read as creation\n" +
			"payloads, so identifiers and timestamps from an export are replaced.\n" +
			"Malformed lines are skipped; the first rejected record stops the import.",
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := lookupCollection(args[0])
			if err != nil {
				return err
			}
			return withCollection(cmd, f, name, func(s *session, ops collectionOps) error {
				imported, skipped, err := ops.importFile(cmd.Context(), file)
				if f.jsonMode {
					if werr := writeJSON(cmd.OutOrStdout(), map[string]any{
						"collection": name.Plural, "imported": imported, "skipped": skipped,
					}); werr != nil {
						return werr
					}
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Imported %d %s (%d skipped).\n", imported, name.Plural, skipped)
				}
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSONL file to read (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
