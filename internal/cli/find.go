package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/notevault/notevault/internal/note"
)

// FindOptions holds flags for the find command.
type FindOptions struct {
	*RootOptions
	Keywords    []string
	Tags        []string
	ExcludeTags []string
	AnyTags     []string
	After       string
	Before      string
	Lineages    []int64
	Versions    []int64
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FindOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Search notes",
		Long: `Search the current version of every live note.

Predicates combine with AND across dimensions. Within a dimension:
keywords are OR-combined substring matches, --tag requires every listed
tag, --any-tag requires at least one, --exclude-tag rejects notes
carrying any. Dates bound creation time inclusively and accept
"2006-01-02" or "2006-01-02 15:04:05"; a date-only --before covers the
whole day.

--lineage and --version are lookups, not filters: --lineage returns the
current version of each listed note, --version returns those exact
version rows even when superseded or deleted. Either one overrides all
other predicates.

Examples:
  notevault find --keyword milk
  notevault find --tag category:errand --exclude-tag done
  notevault find --any-tag urgent --any-tag important --after 2026-01-01
  notevault find --lineage 12 --lineage 30
  notevault find --version 47`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(opts, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Keywords, "keyword", nil, "content substring to match (repeatable, any may match)")
	cmd.Flags().StringSliceVar(&opts.Tags, "tag", nil, "tag the note must carry (repeatable, all must match)")
	cmd.Flags().StringSliceVar(&opts.ExcludeTags, "exclude-tag", nil, "tag the note must not carry (repeatable)")
	cmd.Flags().StringSliceVar(&opts.AnyTags, "any-tag", nil, "tag of which at least one must match (repeatable)")
	cmd.Flags().StringVar(&opts.After, "after", "", "only notes created on or after this time")
	cmd.Flags().StringVar(&opts.Before, "before", "", "only notes created on or before this time")
	cmd.Flags().Int64SliceVar(&opts.Lineages, "lineage", nil, "note id to fetch directly (repeatable)")
	cmd.Flags().Int64SliceVar(&opts.Versions, "version", nil, "exact version id to fetch (repeatable)")

	return cmd
}

func runFind(opts *FindOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	filter := note.Filter{
		Keywords:    opts.Keywords,
		IncludeTags: opts.Tags,
		ExcludeTags: opts.ExcludeTags,
		AnyOfTags:   opts.AnyTags,
		LineageIDs:  opts.Lineages,
		VersionIDs:  opts.Versions,
	}

	if opts.After != "" {
		t, err := parseDateBound(opts.After, false)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --after date", err)
		}
		filter.CreatedAfter = &t
	}
	if opts.Before != "" {
		t, err := parseDateBound(opts.Before, true)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --before date", err)
		}
		filter.CreatedBefore = &t
	}

	st, _, err := openInitializedStore(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	versions, err := st.Find(ctx, filter)
	if err != nil {
		return failure(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(versions)
	}

	w := cmd.OutOrStdout()
	if len(versions) == 0 {
		fmt.Fprintln(w, "No notes found.")
		return nil
	}
	fmt.Fprintf(w, "Found %d note(s):\n", len(versions))
	renderVersions(w, versions, displayFormat(ctx, st), opts.Verbose)
	return nil
}

// parseDateBound parses a date flag. A bare date used as an upper bound
// is extended to the end of that day so the whole day is covered.
func parseDateBound(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", value, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a date (want 2006-01-02 or \"2006-01-02 15:04:05\")", value)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
