package wsclient

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yaklabco/gomdedit/pkg/ot"
)

// Message types sent by the server besides operations.
const (
	TypeSnapshot = "snapshot"
	TypeError    = "error"
)

// SnapshotMessage carries a full document.
type SnapshotMessage struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Version uint64 `json:"version,omitempty"`
}

// ErrorMessage reports a server-side problem, optionally with a position.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// Message is one decoded server frame. Exactly one field is set.
type Message struct {
	Snapshot  *ot.Snapshot
	Operation *ot.Operation
	Error     *ErrorMessage
}

// Decode parses a server frame. Operations use the ot wire shape.
func Decode(data []byte) (Message, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Message{}, err
	}

	switch head.Type {
	case TypeSnapshot:
		var snap SnapshotMessage
		if err := json.Unmarshal(data, &snap); err != nil {
			return Message{}, err
		}
		return Message{Snapshot: &ot.Snapshot{Text: snap.Text, Version: snap.Version}}, nil
	case TypeError:
		var msg ErrorMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return Message{}, err
		}
		return Message{Error: &msg}, nil
	default:
		var op ot.Operation
		if err := json.Unmarshal(data, &op); err != nil {
			return Message{}, err
		}
		return Message{Operation: &op}, nil
	}
}

// Position converts a JSON syntax error offset into a 1-based line and
// column. Other errors give 0, 0.
func Position(data []byte, err error) (int, int) {
	var syntax *json.SyntaxError
	if !errors.As(err, &syntax) {
		return 0, 0
	}
	line, col := 1, 1
	for _, b := range data[:min(int(syntax.Offset), len(data))] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// EncodeSnapshot returns the frame for a snapshot. Servers and tests use it.
func EncodeSnapshot(snapshot ot.Snapshot) ([]byte, error) {
	data, err := json.Marshal(SnapshotMessage{Type: TypeSnapshot, Text: snapshot.Text, Version: snapshot.Version})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}
