package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the whole store to a snapshot file",
		Long: `Export every note version, tag, and link to a JSON snapshot,
including superseded versions and the trash. The snapshot re-imports
into an empty store with every identifier intact.

Without a file argument the snapshot goes to the configured
default_export_directory under a timestamped name.

Examples:
  notevault export
  notevault export backups/notes.json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runExport(rootOpts, path, cmd)
		},
	}
}

func runExport(opts *RootOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, _, err := openInitializedStore(ctx, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	if path == "" {
		dir, err := st.GetSetting(ctx, "default_export_directory")
		if err != nil {
			return failure(formatter, err)
		}
		name := fmt.Sprintf("notevault-export-%s.json", time.Now().UTC().Format("20060102T150405Z"))
		path = filepath.Join(dir, name)
	}

	snap, err := st.ExportToFile(ctx, path)
	if err != nil {
		return failure(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"file":        path,
			"snapshot_id": snap.SnapshotID,
			"versions":    len(snap.Versions),
			"tags":        len(snap.Tags),
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d version(s) and %d tag(s) to %s\n",
		len(snap.Versions), len(snap.Tags), path)
	return nil
}
