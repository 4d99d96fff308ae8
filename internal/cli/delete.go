package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notevault/notevault/internal/store"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Move a note to the trash",
		Long: `Soft-delete a note. The note disappears from find but keeps its
full history and can be brought back with restore. Permanent removal
only happens through purge.

Examples:
  notevault delete 12`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args[0], cmd)
		},
	}
}

func runDelete(opts *RootOptions, idArg string, cmd *cobra.Command) error {
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

	ok, err := st.SoftDelete(ctx, id)
	if err != nil {
		return failure(formatter, err)
	}
	if !ok {
		message := fmt.Sprintf("note %d is not live (missing or already deleted)", id)
		_ = formatter.Error(string(store.ErrCodeNotFound), message, nil)
		return NewExitError(ExitFailure, message)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]int64{"lineage_id": id})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted note %d\n", id)
	return nil
}
