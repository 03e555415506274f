// Package apperr holds the sentinel errors shared by every lexicon surface.
package apperr

import "errors"

var (
	ErrReservedName      = errors.New("reserved name")
	ErrInvalidName       = errors.New("invalid term name")
	ErrParentNotFound    = errors.New("parent not found")
	ErrPromotionConflict = errors.New("promotion conflict")
	ErrTermExists        = errors.New("term already exists")
	ErrTermNotFound      = errors.New("term not found")
	ErrRootCollision     = errors.New("vocabulary root is not a directory")
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitNotFound = 2
)

// ExitCode maps err to the exit code a command invocation should report.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrTermNotFound):
		return ExitNotFound
	default:
		return ExitFailure
	}
}

var kinds = []struct {
	err  error
	kind string
}{
	{ErrReservedName, "reserved-name"},
	{ErrInvalidName, "invalid-name"},
	{ErrParentNotFound, "parent-not-found"},
	{ErrPromotionConflict, "promotion-conflict"},
	{ErrTermExists, "term-exists"},
	{ErrTermNotFound, "term-not-found"},
	{ErrRootCollision, "root-path-collision"},
}

// Kind returns the stable identifier of a lexicon error, or "" for errors
// that are not one of the sentinels above.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ""
}
