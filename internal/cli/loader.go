package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/notevault/notevault/internal/config"
	"github.com/notevault/notevault/internal/store"
)

// EnvDatabase is the environment variable consulted for the database
// path when --db is not given.
const EnvDatabase = "NOTEVAULT_DB"

// resolveConfig builds the effective configuration. Precedence, lowest
// to highest: built-in defaults, config file, NOTEVAULT_DB, --db.
func resolveConfig(opts *RootOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.LoadFile(opts.Config)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if env := os.Getenv(EnvDatabase); env != "" {
		cfg.Path = env
	}
	if opts.Database != "" {
		cfg.Path = opts.Database
	}
	return cfg, nil
}

// openStore resolves the configuration and opens the database without
// requiring a schema. Only init uses this directly; every other command
// goes through openInitializedStore.
func openStore(opts *RootOptions) (*store.Store, config.Config, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	slog.Debug("opening database", "path", cfg.Path)
	st, err := store.Open(cfg)
	if err != nil {
		return nil, config.Config{}, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, cfg, nil
}

// openInitializedStore opens the database and verifies the schema
// exists, pointing at init when it does not. Callers own the returned
// store and must Close it.
func openInitializedStore(ctx context.Context, opts *RootOptions) (*store.Store, config.Config, error) {
	st, cfg, err := openStore(opts)
	if err != nil {
		return nil, config.Config{}, err
	}

	ok, err := st.Initialized(ctx)
	if err != nil {
		st.Close()
		return nil, config.Config{}, WrapExitError(ExitCommandError, "failed to inspect database", err)
	}
	if !ok {
		st.Close()
		return nil, config.Config{}, NewExitError(ExitCommandError,
			fmt.Sprintf("database %s has no schema: run 'notevault init' first", cfg.Path))
	}
	return st, cfg, nil
}

// displayFormat returns the configured timestamp display format,
// falling back to the built-in default when the setting is unreadable.
func displayFormat(ctx context.Context, st *store.Store) string {
	format, err := st.GetSetting(ctx, "date_display_format")
	if err != nil || format == "" {
		return "2006-01-02 15:04"
	}
	return format
}

// parseLineageID interprets a positional note id argument.
func parseLineageID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid note id %q", arg))
	}
	return id, nil
}
