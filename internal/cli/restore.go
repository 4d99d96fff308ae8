package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notevault/notevault/internal/store"
)

// NewRestoreCommand creates the restore command.
func NewRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Bring a note back from the trash",
		Long: `Restore a soft-deleted note. The note reappears in find exactly as
it was when deleted.

Examples:
  notevault restore 12`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(rootOpts, args[0], cmd)
		},
	}
}

func runRestore(opts *RootOptions, idArg string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	id, err := parseLineageID(idArg)
	if err != nil {
		return err
	}

	st, _, err := openInitializedStore(ctx, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	ok, err := st.Restore(ctx, id)
	if err != nil {
		return failure(formatter, err)
	}
	if !ok {
		message := fmt.Sprintf("note %d is not in the trash", id)
		_ = formatter.Error(string(store.ErrCodeNotFound), message, nil)
		return NewExitError(ExitFailure, message)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]int64{"lineage_id": id})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Restored note %d\n", id)
	return nil
}
