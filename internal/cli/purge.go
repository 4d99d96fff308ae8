package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// PurgeOptions holds flags for the purge command.
type PurgeOptions struct {
	*RootOptions
	OlderThan int
}

// NewPurgeCommand creates the purge command.
func NewPurgeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PurgeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Permanently remove trashed notes",
		Long: `Permanently remove soft-deleted notes, including their entire
version history. This cannot be undone.

Without --older-than everything in the trash goes. With it, only notes
deleted strictly more than the given number of days ago go; a note
deleted exactly at the boundary stays.

Examples:
  notevault purge
  notevault purge --older-than 30`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPurge(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.OlderThan, "older-than", -1, "only purge notes deleted more than this many days ago")

	return cmd
}

func runPurge(opts *PurgeOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, _, err := openInitializedStore(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	var purged int
	if cmd.Flags().Changed("older-than") {
		purged, err = st.PurgeDeletedOlderThan(ctx, opts.OlderThan)
	} else {
		purged, err = st.PurgeDeleted(ctx)
	}
	if err != nil {
		return failure(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]int{"purged": purged})
	}

	w := cmd.OutOrStdout()
	if cmd.Flags().Changed("older-than") {
		fmt.Fprintf(w, "Purged %d note(s) deleted more than %d day(s) ago\n", purged, opts.OlderThan)
	} else {
		fmt.Fprintf(w, "Purged %d note(s) from the trash\n", purged)
	}
	return nil
}
