package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/mdast"
	"github.com/yaklabco/gomdedit/pkg/ot"
)

// Connect opens the transport session. The session goes live when the first
// snapshot arrives.
func (c *Controller) Connect(ctx context.Context) error {
	if c.transport == nil {
		return ErrTransportUnavailable
	}
	if err := c.transport.Connect(ctx, c); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

// Disconnect stops sending operations and closes the transport session.
// The document is left as it is.
func (c *Controller) Disconnect(reason string) {
	wasConnected := c.connected
	c.connected = false
	if c.transport == nil {
		return
	}
	if err := c.transport.Disconnect(reason); err != nil {
		c.logger.Warn("disconnect failed", logging.FieldReason, reason, logging.FieldError, err)
	}
	if wasConnected {
		c.notifyConnection(ConnectionEvent{State: Disconnected, Message: reason})
	}
}

// OnSnapshot implements TransportHandler.
func (c *Controller) OnSnapshot(snapshot ot.Snapshot) {
	c.exec.Post(func() {
		if err := c.ApplySnapshot(snapshot); err != nil {
			c.logger.Error("snapshot rejected", logging.FieldError, err)
		}
	})
}

// OnOperation implements TransportHandler.
func (c *Controller) OnOperation(op ot.Operation) {
	c.exec.Post(func() {
		if err := c.ApplyRemote(op); err != nil {
			c.logger.Error("remote operation rejected", logging.FieldOp, op, logging.FieldError, err)
		}
	})
}

// OnError implements TransportHandler.
func (c *Controller) OnError(message string, line, column int) {
	c.exec.Post(func() {
		c.logger.Warn("transport error", logging.FieldMessage, message)
		c.notifyConnection(ConnectionEvent{State: ConnectionError, Message: message, Line: line, Column: column})
	})
}

// OnDisconnect implements TransportHandler.
func (c *Controller) OnDisconnect(message string) {
	c.exec.Post(func() {
		c.connected = false
		c.logger.Info("disconnected", logging.FieldMessage, message)
		c.notifyConnection(ConnectionEvent{State: Disconnected, Message: message})
	})
}

// ApplySnapshot replaces the document with a snapshot and makes the session
// live. An empty snapshot is bootstrapped with a title block, which is sent
// back as a single insert.
func (c *Controller) ApplySnapshot(snapshot ot.Snapshot) error {
	wasConnected := c.connected

	err := c.mutate("snapshot", func() error {
		c.connected = c.transport != nil
		c.trusted = true
		c.seq = snapshot.Version

		if snapshot.Text == "" {
			text := "# " + c.defaultTitle + "\n"
			before := c.doc.Text()
			if err := c.remoteReplace(mdast.Range{End: len(before)}, text); err != nil {
				return err
			}
			c.emit("", []ot.Operation{ot.NewInsert(0, text)})
			return nil
		}

		ops := ot.Diff(c.doc.Text(), snapshot.Text)
		if len(ops) == 0 {
			return nil
		}
		r, text := ops[0].Range(), ops[len(ops)-1].Replacement()
		return c.remoteReplace(r, text)
	})
	if err != nil {
		return err
	}

	if c.connected && !wasConnected {
		c.notifyConnection(ConnectionEvent{State: Connected})
	}
	return nil
}

// ApplyRemote applies one operation received from the transport, verbatim.
// Operations carrying a sequence number must arrive in order. Any failure
// leaves the document untrusted and ends the session.
func (c *Controller) ApplyRemote(op ot.Operation) error {
	if !c.trusted {
		return &SyncError{Op: &op, Reason: "document untrusted until next snapshot"}
	}

	if op.Seq != 0 && op.Seq != c.seq+1 {
		reason := fmt.Sprintf("expected seq %d, got %d", c.seq+1, op.Seq)
		return c.desync(&SyncError{Op: &op, Reason: reason})
	}

	local, err := ot.FromWire(c.doc.Text(), op, c.unit)
	if err == nil {
		err = ot.Validate(local, c.doc.Len())
	}
	if err != nil {
		return c.desync(&SyncError{Op: &op, Reason: "stale offsets", Err: err})
	}

	err = c.mutate("remote", func() error {
		return c.remoteReplace(local.Range(), local.Replacement())
	})
	if err != nil {
		var stateErr *StateError
		if errors.As(err, &stateErr) {
			return err
		}
		return c.desync(&SyncError{Op: &op, Reason: "apply failed", Err: err})
	}

	if op.Seq != 0 {
		c.seq = op.Seq
	}
	return nil
}

// remoteReplace commits a replacement that came from the transport, between
// the remote edit notifications.
func (c *Controller) remoteReplace(r mdast.Range, text string) error {
	for _, o := range c.observers {
		o.RemoteEditWillApply()
	}
	err := c.replace(r, text, -1)
	for _, o := range c.observers {
		o.RemoteEditDidApply()
	}
	return err
}

// desync marks the document untrusted and drops the session so that a fresh
// snapshot is fetched.
func (c *Controller) desync(err *SyncError) error {
	c.trusted = false
	c.logger.Error("document out of sync", logging.FieldError, err, logging.FieldSeq, c.seq)
	c.Disconnect(DisconnectResync)
	return err
}
