package store

import (
	"errors"
	"fmt"
)

// ErrorCode classifies store failures for programmatic handling.
type ErrorCode string

const (
	// ErrCodeConnectionFailure means the database could not be opened
	// or reached.
	ErrCodeConnectionFailure ErrorCode = "CONNECTION_FAILURE"

	// ErrCodeNotFound means the target lineage, version, tag, or
	// setting does not exist (or is not in the required state).
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeValidation means the input was rejected before any state
	// changed.
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeIntegrity means a write collided with existing data, such
	// as an import into a non-empty store.
	ErrCodeIntegrity ErrorCode = "INTEGRITY"

	// ErrCodeFormatMismatch means a snapshot was structurally invalid
	// or carried an unsupported format version.
	ErrCodeFormatMismatch ErrorCode = "FORMAT_MISMATCH"
)

// Error is a classified store failure. Callers branch on Code (or the
// Is* helpers) rather than matching message text.
type Error struct {
	Code      ErrorCode
	Message   string
	LineageID int64             // affected lineage, 0 when not applicable
	Details   map[string]string // extra context for diagnostics
	Err       error             // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.LineageID != 0 {
		return fmt.Sprintf("%s: %s (lineage %d)", e.Code, e.Message, e.LineageID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewConnectionFailure creates an error for an unreachable or
// unopenable database.
func NewConnectionFailure(message string, err error) *Error {
	return &Error{
		Code:    ErrCodeConnectionFailure,
		Message: message,
		Err:     err,
	}
}

// NewValidation creates an error for input rejected before any write.
func NewValidation(message string) *Error {
	return &Error{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// NewIntegrity creates an error for a write that collided with
// existing rows.
func NewIntegrity(message string, err error) *Error {
	return &Error{
		Code:    ErrCodeIntegrity,
		Message: message,
		Err:     err,
	}
}

// NewFormatMismatch creates an error for a snapshot that fails
// structural validation or carries an unsupported format version.
func NewFormatMismatch(message string) *Error {
	return &Error{
		Code:    ErrCodeFormatMismatch,
		Message: message,
	}
}

// NewNoLatestVersion creates an error for a lineage with no latest
// version at all (unknown or fully purged).
func NewNoLatestVersion(lineageID int64) *Error {
	return &Error{
		Code:      ErrCodeNotFound,
		Message:   "no latest version for lineage",
		LineageID: lineageID,
	}
}

// NewNoActiveVersion creates an error for a lineage whose latest
// version is missing or soft-deleted, where the operation requires an
// active one.
func NewNoActiveVersion(lineageID int64) *Error {
	return &Error{
		Code:      ErrCodeNotFound,
		Message:   "no active version for lineage",
		LineageID: lineageID,
	}
}

// NewTagNotOnVersion creates an error for removing a tag the current
// version does not carry. Distinguishable from a missing lineage via
// IsTagNotOnVersion.
func NewTagNotOnVersion(lineageID int64, tag string) *Error {
	return &Error{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("tag %q is not on the current version", tag),
		LineageID: lineageID,
		Details: map[string]string{
			"reason": "tag_not_on_version",
			"tag":    tag,
		},
	}
}

// NewSettingNotFound creates an error for a setting key with neither a
// stored value nor a configured default.
func NewSettingNotFound(key string) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("no setting named %q", key),
		Details: map[string]string{"key": key},
	}
}

func hasCode(err error, code ErrorCode) bool {
	var storeErr *Error
	return errors.As(err, &storeErr) && storeErr.Code == code
}

// IsConnectionFailure reports whether err is a connection failure.
func IsConnectionFailure(err error) bool {
	return hasCode(err, ErrCodeConnectionFailure)
}

// IsNotFound reports whether err indicates a missing lineage, version,
// tag, or setting.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsValidation reports whether err is a validation rejection.
func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

// IsIntegrity reports whether err is an integrity collision.
func IsIntegrity(err error) bool {
	return hasCode(err, ErrCodeIntegrity)
}

// IsFormatMismatch reports whether err is a snapshot format rejection.
func IsFormatMismatch(err error) bool {
	return hasCode(err, ErrCodeFormatMismatch)
}

// IsTagNotOnVersion reports whether err specifically means the tag was
// absent from the current version, as opposed to the lineage having no
// active version.
func IsTagNotOnVersion(err error) bool {
	var storeErr *Error
	return errors.As(err, &storeErr) &&
		storeErr.Code == ErrCodeNotFound &&
		storeErr.Details["reason"] == "tag_not_on_version"
}
