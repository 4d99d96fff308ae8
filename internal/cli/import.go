package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load a snapshot file into the store",
		Long: `Import a snapshot produced by export, preserving every identifier
and timestamp. The file is validated before anything is written; a
malformed snapshot or one with an unsupported format version changes
nothing.

Import expects an empty store. Colliding identifiers abort the whole
import, so import into a freshly initialized database.

Examples:
  notevault init --db fresh.db
  notevault import backups/notes.json --db fresh.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], cmd)
		},
	}
}

func runImport(opts *RootOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if _, err := os.Stat(path); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("cannot read snapshot file %s", path), err)
	}

	st, _, err := openInitializedStore(ctx, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.ImportFromFile(ctx, path)
	if err != nil {
		return failure(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"file":     path,
			"versions": len(snap.Versions),
			"tags":     len(snap.Tags),
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d version(s) and %d tag(s) from %s\n",
		len(snap.Versions), len(snap.Tags), path)
	return nil
}
