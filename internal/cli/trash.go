package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewTrashCommand creates the trash command.
func NewTrashCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "trash",
		Short: "List soft-deleted notes",
		Long: `List every note currently in the trash, most recently deleted
first. These are the notes purge would remove permanently.

Examples:
  notevault trash
  notevault trash --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrash(rootOpts, cmd)
		},
	}
}

func runTrash(opts *RootOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, _, err := openInitializedStore(ctx, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	versions, err := st.ListDeleted(ctx)
	if err != nil {
		return failure(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(versions)
	}

	w := cmd.OutOrStdout()
	if len(versions) == 0 {
		fmt.Fprintln(w, "Trash is empty.")
		return nil
	}
	fmt.Fprintf(w, "%d note(s) in the trash:\n", len(versions))
	renderVersions(w, versions, displayFormat(ctx, st), opts.Verbose)
	return nil
}
