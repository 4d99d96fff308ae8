package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show every version of a note",
		Long: `Show a note's full version chain, oldest first, including versions
appended while the note was deleted.

Examples:
  notevault history 12
  notevault history 12 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, args[0], cmd)
		},
	}
}

func runHistory(opts *RootOptions, idArg string, cmd *cobra.Command) error {
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

	versions, err := st.History(ctx, id)
	if err != nil {
		return failure(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(versions)
	}

	w := cmd.OutOrStdout()
	if len(versions) == 0 {
		fmt.Fprintf(w, "No note with id %d.\n", id)
		return nil
	}
	dateFormat := displayFormat(ctx, st)
	fmt.Fprintf(w, "History of note %d (%d version(s)):\n", id, len(versions))
	for _, v := range versions {
		marker := " "
		if v.IsLatest {
			marker = "*"
		}
		fmt.Fprintf(w, "%s [v%d] %s  %s\n", marker, v.VersionID, v.CreatedAt.Format(dateFormat), v.Content)
		if opts.Verbose && len(v.Tags) > 0 {
			fmt.Fprintf(w, "     tags %s\n", strings.Join(v.Tags, ", "))
		}
		if opts.Verbose && len(v.Properties) > 0 {
			fmt.Fprintf(w, "     props %s\n", formatProperties(v.Properties))
		}
	}
	return nil
}
