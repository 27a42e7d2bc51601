package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fragmentgrid/pkg/errors"
	"github.com/matzehuels/fragmentgrid/pkg/fragment"
)

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var backend, dsn string

	cmd := &cobra.Command{
		Use:   "import <fragments.json>",
		Short: "Load a fragment document into the store",
		Long: `Load a fragment document into the store.

Fragments without an id are given a new one. Stored positions and
direction hints in the document are imported along with the fragments.
Existing fragments with the same id are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			doc, err := readImportFile(args[0])
			if err != nil {
				return err
			}
			assigned := fragment.EnsureIDs(doc.Fragments)
			if err := doc.Validate(); err != nil {
				return err
			}

			st, err := c.newStore(ctx, backend, dsn)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.SaveFragments(ctx, doc.Fragments); err != nil {
				return fmt.Errorf("save fragments: %w", err)
			}
			if len(doc.Positions) > 0 {
				if err := st.ApplyPatch(ctx, doc.Positions); err != nil {
					return fmt.Errorf("save positions: %w", err)
				}
			}
			if len(doc.Directions) > 0 {
				if err := st.SaveDirections(ctx, doc.Directions); err != nil {
					return fmt.Errorf("save directions: %w", err)
				}
			}

			printSuccess("Imported %d fragments", len(doc.Fragments))
			if assigned > 0 {
				printDetail("Assigned %d new ids", assigned)
			}
			if len(doc.Positions) > 0 {
				printDetail("Imported %d positions", len(doc.Positions))
			}
			printNewline()
			printNextStep("Lay out", appName+" layout --apply")
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "store", "", "store backend: memory, file, sqlite, mongo")
	cmd.Flags().StringVar(&dsn, "dsn", "", "store path or connection URI")

	return cmd
}

// readImportFile decodes a document without validating it, so that
// fragments missing an id can still be imported.
func readImportFile(path string) (*fragment.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "fragment file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return fragment.Decode(f)
}
