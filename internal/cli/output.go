package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/notevault/notevault/internal/note"
	"github.com/notevault/notevault/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failure (missing note, refused tag change, failed import)
	ExitCommandError = 2 // Command error (bad flags, unreachable or uninitialized database)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// newFormatter builds the formatter every command starts from, with
// diagnostics on stderr so JSON output stays clean.
func newFormatter(opts *RootOptions, out, errOut io.Writer) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   opts.Verbose,
	}
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // store error code or "ERROR"
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		encoder := json.NewEncoder(f.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		encoder := json.NewEncoder(f.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// failure renders an error through the formatter and converts it to an
// ExitError carrying the matching exit code: connection failures are
// command errors, everything else is an operation failure.
func failure(f *OutputFormatter, err error) error {
	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		var details interface{}
		if len(storeErr.Details) > 0 {
			details = storeErr.Details
		}
		_ = f.Error(string(storeErr.Code), storeErr.Message, details)
		code := ExitFailure
		if store.IsConnectionFailure(err) {
			code = ExitCommandError
		}
		return WrapExitError(code, storeErr.Message, storeErr.Err)
	}

	_ = f.Error("ERROR", err.Error(), nil)
	return NewExitError(ExitFailure, err.Error())
}

// renderVersions prints a version list in text form. dateFormat comes
// from the date_display_format setting.
func renderVersions(w io.Writer, versions []note.Version, dateFormat string, verbose bool) {
	for _, v := range versions {
		renderVersion(w, v, dateFormat, verbose)
	}
}

func renderVersion(w io.Writer, v note.Version, dateFormat string, verbose bool) {
	fmt.Fprintf(w, "[%d] %s\n", v.LineageID, v.Content)
	fmt.Fprintf(w, "    created %s", v.CreatedAt.Format(dateFormat))
	if len(v.Tags) > 0 {
		fmt.Fprintf(w, "  tags %s", strings.Join(v.Tags, ", "))
	}
	if v.IsDeleted {
		fmt.Fprint(w, "  (deleted")
		if v.DeletedAt != nil {
			fmt.Fprintf(w, " %s", v.DeletedAt.Format(dateFormat))
		}
		fmt.Fprint(w, ")")
	}
	fmt.Fprintln(w)
	if verbose {
		fmt.Fprintf(w, "    version %d\n", v.VersionID)
		if len(v.Properties) > 0 {
			fmt.Fprintf(w, "    props %s\n", formatProperties(v.Properties))
		}
	}
}

// formatProperties renders a properties map with sorted keys for
// deterministic output.
func formatProperties(props map[string]any) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, props[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
