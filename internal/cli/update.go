package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notevault/notevault/internal/note"
)

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	*RootOptions
	Content   string
	Tags      []string
	ClearTags bool
	Props     string
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Append a new version to a note",
		Long: `Append a new version to a note. The previous version is kept and
stays visible through history.

Fields not given carry forward unchanged. --tag replaces the whole tag
set; --clear-tags empties it. --props merges the given keys into the
existing properties. Updating works even on a soft-deleted note and
brings it back as live.

Examples:
  notevault update 12 --content "Buy oat milk"
  notevault update 12 --tag shopping --tag done
  notevault update 12 --clear-tags --props '{"priority":3}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Content, "content", "", "replacement content")
	cmd.Flags().StringSliceVar(&opts.Tags, "tag", nil, "replacement tag set (repeatable)")
	cmd.Flags().BoolVar(&opts.ClearTags, "clear-tags", false, "remove every tag from the note")
	cmd.Flags().StringVar(&opts.Props, "props", "", "properties to merge, as a JSON object")

	return cmd
}

func runUpdate(opts *UpdateOptions, arg string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	id, err := parseLineageID(arg)
	if err != nil {
		return err
	}

	up := note.Update{}
	if cmd.Flags().Changed("content") {
		up.Content = &opts.Content
	}
	switch {
	case opts.ClearTags:
		up.Tags = []string{}
	case cmd.Flags().Changed("tag"):
		up.Tags = opts.Tags
	}
	if opts.Props != "" {
		props, err := parseProps(opts.Props)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --props JSON", err)
		}
		up.Properties = props
	}

	if up.Content == nil && up.Tags == nil && up.Properties == nil {
		return NewExitError(ExitCommandError, "nothing to update: give --content, --tag, --clear-tags, or --props")
	}

	st, _, err := openInitializedStore(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	versionID, err := st.AppendVersion(ctx, id, up)
	if err != nil {
		return failure(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]int64{"lineage_id": id, "version_id": versionID})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated note %d (version %d)\n", id, versionID)
	return nil
}
