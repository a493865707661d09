package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/concierge/pkg/types"
)

// newCollectionCmd builds "<collection> list|add|update|delete" for one
// collection. Payloads are JSON objects given as an argument, or read from
// stdin when the argument is "-".
func newCollectionCmd(f *rootFlags, name types.CollectionName) *cobra.Command {
	cmd := &cobra.Command{
		Use:     name.Plural,
		Aliases: []string{name.Singular},
		Short:   fmt.Sprintf("Manage %s", name.Plural),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s", name.Plural),
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCollection(cmd, f, name, func(s *session, ops collectionOps) error {
				ctx, cancel := s.withTimeout(cmd.Context())
				defer cancel()
				if err := ops.fetch(ctx); err != nil {
					return err
				}
				return ops.render(cmd.OutOrStdout(), f.jsonMode)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <json>",
		Short: fmt.Sprintf("Add a %s", name.Singular),
		Example: fmt.Sprintf("  concierge %s add '%s'\n  cat %s.json | concierge %s add -",
			name.Plural, exampleCreate(name), name.Singular, name.Plural),
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return withCollection(cmd, f, name, func(s *session, ops collectionOps) error {
				ctx, cancel := s.withTimeout(cmd.Context())
				defer cancel()
				if err := ops.add(ctx, payload); err != nil {
					return err
				}
				return report(cmd, f, ops, fmt.Sprintf("Added %s.", name.Singular))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "update <id> <json>",
		Short: fmt.Sprintf("Update fields of a %s", name.Singular),
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}
			return withCollection(cmd, f, name, func(s *session, ops collectionOps) error {
				ctx, cancel := s.withTimeout(cmd.Context())
				defer cancel()
				if err := ops.update(ctx, args[0], payload); err != nil {
					return err
				}
				return report(cmd, f, ops, fmt.Sprintf("Updated %s %s.", name.Singular, args[0]))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   fmt.Sprintf("Delete a %s", name.Singular),
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCollection(cmd, f, name, func(s *session, ops collectionOps) error {
				ctx, cancel := s.withTimeout(cmd.Context())
				defer cancel()
				if err := ops.remove(ctx, args[0]); err != nil {
					return err
				}
				return report(cmd, f, ops, fmt.Sprintf("Deleted %s %s.", name.Singular, args[0]))
			})
		},
	})

	return cmd
}

// withCollection opens a session, runs fn with the named collection and
// closes the session.
func withCollection(cmd *cobra.Command, f *rootFlags, name types.CollectionName, fn func(*session, collectionOps) error) error {
	s, err := openSession(cmd, f)
	if err != nil {
		return err
	}
	defer s.close()

	ops, err := s.binding(name)
	if err != nil {
		return err
	}
	return fn(s, ops)
}

// report prints the refreshed collection in JSON mode, or msg otherwise.
func report(cmd *cobra.Command, f *rootFlags, ops collectionOps, msg string) error {
	if f.jsonMode {
		return ops.render(cmd.OutOrStdout(), true)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %d %s now.\n", msg, ops.size(), ops.name().Plural)
	return err
}

func readPayload(stdin io.Reader, arg string) ([]byte, error) {
	if arg != "-" {
		return []byte(arg), nil
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}

func exampleCreate(name types.CollectionName) string {
	switch name {
	case types.ResidentsCollection:
		return `{"name":"Alice Kim","unit":"4B","email":"alice@example.com"}`
	case types.PackagesCollection:
		return `{"resident_id":"<resident id>","carrier":"UPS"}`
	case types.NotificationsCollection:
		return `{"title":"Water shut-off Tuesday","kind":"maintenance"}`
	default:
		return `{"author_id":"<resident id>","body":"Rooftop BBQ at 6"}`
	}
}
