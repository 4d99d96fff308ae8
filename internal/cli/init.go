package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Force bool
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database schema",
		Long: `Create the note store schema in the configured database.

Initialization is destructive: existing note tables are dropped and
recreated empty. On an already-initialized database the command refuses
to run unless --force is given.

Examples:
  notevault init --db ./notes.db
  notevault init --db ./notes.db --force`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "recreate the schema even if one exists, discarding all data")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, cfg, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	initialized, err := st.Initialized(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to inspect database", err)
	}
	if initialized && !opts.Force {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("database %s is already initialized (use --force to wipe it)", cfg.Path))
	}

	if err := st.InitSchema(ctx); err != nil {
		return failure(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]string{"database": cfg.Path})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized note store at %s\n", cfg.Path)
	return nil
}
