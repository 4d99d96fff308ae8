package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewTagCommand creates the tag command group.
func NewTagCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage note tags",
		Long: `Manage the tags on a note and the shared tag vocabulary.

Adding or removing a tag appends a new version carrying the changed
set; content and properties stay as they were. Both refuse to touch a
soft-deleted note.`,
	}

	cmd.AddCommand(newTagAddCommand(rootOpts))
	cmd.AddCommand(newTagRemoveCommand(rootOpts))
	cmd.AddCommand(newTagListCommand(rootOpts))

	return cmd
}

func newTagAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <tag>",
		Short: "Add a tag to a note",
		Long: `Add a single tag to a note's current version.

Examples:
  notevault tag add 12 urgent
  notevault tag add 12 category:errand`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTagAdd(rootOpts, args[0], args[1], cmd)
		},
	}
}

func newTagRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id> <tag>",
		Short: "Remove a tag from a note",
		Long: `Remove a single tag from a note's current version.

Fails without creating a version when the note does not carry the tag.

Examples:
  notevault tag remove 12 urgent
  notevault tag remove 12 category:errand`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTagRemove(rootOpts, args[0], args[1], cmd)
		},
	}
}

func newTagListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the tag vocabulary",
		Long: `List every tag ever used, including tags no current version
carries. The vocabulary only grows; purging notes does not shrink it.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTagList(rootOpts, cmd)
		},
	}
}

func runTagAdd(opts *RootOptions, idArg, rawTag string, cmd *cobra.Command) error {
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

	versionID, err := st.AddTag(ctx, id, rawTag)
	if err != nil {
		return failure(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]int64{"lineage_id": id, "version_id": versionID})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Tagged note %d (version %d)\n", id, versionID)
	return nil
}

func runTagRemove(opts *RootOptions, idArg, rawTag string, cmd *cobra.Command) error {
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

	versionID, err := st.RemoveTag(ctx, id, rawTag)
	if err != nil {
		return failure(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]int64{"lineage_id": id, "version_id": versionID})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Untagged note %d (version %d)\n", id, versionID)
	return nil
}

func runTagList(opts *RootOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, _, err := openInitializedStore(ctx, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	tags, err := st.ListTags(ctx)
	if err != nil {
		return failure(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(tags)
	}

	w := cmd.OutOrStdout()
	if len(tags) == 0 {
		fmt.Fprintln(w, "No tags.")
		return nil
	}
	for _, tag := range tags {
		fmt.Fprintln(w, tag)
	}
	return nil
}
