package editor

import (
	"context"

	"github.com/yaklabco/gomdedit/pkg/ot"
)

// DisconnectResync is the reason given to the transport when the document has
// to be refetched.
const DisconnectResync = "resync"

// Transport carries operations to and from collaborators. Submit must not
// block on acknowledgement.
type Transport interface {
	Connect(ctx context.Context, handler TransportHandler) error
	Disconnect(reason string) error
	Submit(op ot.Operation) error
}

// TransportHandler receives transport callbacks. Implementations must be safe
// to call from any goroutine.
type TransportHandler interface {
	OnSnapshot(snapshot ot.Snapshot)
	OnOperation(op ot.Operation)
	OnError(message string, line, column int)
	OnDisconnect(message string)
}
