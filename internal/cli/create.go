package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Tags  []string
	Props string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <content>",
		Short: "Create a new note",
		Long: `Create a new note with the given content.

Tags take the form "value" or "type:value"; bare values get the general
type. Properties are free-form key/value pairs supplied as a JSON
object.

Examples:
  notevault create "Buy milk" --tag shopping --tag category:errand
  notevault create "Quarterly report" --props '{"priority":1}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Tags, "tag", nil, "tag for the note (repeatable)")
	cmd.Flags().StringVar(&opts.Props, "props", "", "note properties as a JSON object")

	return cmd
}

func runCreate(opts *CreateOptions, content string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	props, err := parseProps(opts.Props)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --props JSON", err)
	}

	st, _, err := openInitializedStore(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.CreateLineage(ctx, content, opts.Tags, props)
	if err != nil {
		return failure(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]int64{"lineage_id": id})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created note %d\n", id)
	return nil
}

// parseProps decodes the --props flag. Empty means no properties.
func parseProps(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var props map[string]any
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		return nil, err
	}
	return props, nil
}
