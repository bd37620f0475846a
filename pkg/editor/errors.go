package editor

import (
	"errors"
	"fmt"

	"github.com/yaklabco/gomdedit/pkg/ot"
)

// ErrTransportUnavailable is reported when an operation is produced while no
// transport session is live. The local edit still applies.
var ErrTransportUnavailable = errors.New("transport unavailable")

// StateError reports a mutation requested while another one is in progress.
type StateError struct {
	// Op names the rejected request.
	Op string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("reentrant mutation %q while editing", e.Op)
}

// SyncError reports a remote operation or snapshot that cannot be applied in
// the current state. The document stays untrusted until the next snapshot.
type SyncError struct {
	// Op is the offending operation, if any.
	Op *ot.Operation

	// Reason describes the failure.
	Reason string

	// Err is the underlying error, if any.
	Err error
}

func (e *SyncError) Error() string {
	msg := "sync: " + e.Reason
	if e.Op != nil {
		msg += " (" + e.Op.String() + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
