package cli

import (
	"errors"
	"io/fs"

	"github.com/yaklabco/gomdedit/pkg/editor"
	"github.com/yaklabco/gomdedit/pkg/fsutil"
)

// Exit codes for gomdedit.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitFailure indicates the command ran but reported failures, such as
	// files that could not be inspected.
	ExitFailure = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors, including save conflicts.
	ExitIOError = 74

	// ExitSyncError indicates the document fell out of sync with its
	// collaborators and must be refetched.
	ExitSyncError = 75
)

// ErrConfig wraps configuration failures.
var ErrConfig = errors.New("configuration error")

// ErrUsage wraps invalid arguments that cobra cannot check on its own.
var ErrUsage = errors.New("invalid usage")

// ErrFilesFailed is returned when some files could not be processed. The
// failures have already been reported.
var ErrFilesFailed = errors.New("some files failed")

// ExitCode maps an error returned by a command onto a process exit code.
func ExitCode(err error) int {
	var syncErr *editor.SyncError
	var stateErr *editor.StateError

	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrConfig):
		return ExitConfigError
	case errors.As(err, &syncErr), errors.Is(err, ErrResync):
		return ExitSyncError
	case errors.As(err, &stateErr):
		return ExitInternalError
	case errors.Is(err, fsutil.ErrModified), errors.Is(err, fsutil.ErrNotFound),
		errors.Is(err, fsutil.ErrIsDirectory), errors.Is(err, fs.ErrPermission):
		return ExitIOError
	case errors.Is(err, ErrUsage):
		return ExitInvalidUsage
	default:
		return ExitFailure
	}
}
