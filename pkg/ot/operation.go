// Package ot defines the Insert and Remove operations exchanged with a
// collaboration transport, their wire encoding, and their application to text.
package ot

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/yaklabco/gomdedit/pkg/mdast"
)

// Kind distinguishes the two operation variants.
type Kind int

const (
	// Insert adds Text at Location.
	Insert Kind = iota

	// Remove deletes Length units starting at Location.
	Remove
)

// Wire names for each kind.
const (
	insertName = "insert"
	removeName = "remove"
)

func (k Kind) String() string {
	if k == Remove {
		return removeName
	}
	return insertName
}

// Operation is a single edit to the backing string. Offsets are bytes inside
// the editor and transport units on the wire.
type Operation struct {
	Kind     Kind
	Location int

	// Text is the inserted text for Insert operations.
	Text string

	// Length is the removed length for Remove operations.
	Length int

	// Seq is the delivery sequence number assigned by the transport, or zero.
	Seq uint64
}

// NewInsert returns an Insert operation.
func NewInsert(location int, text string) Operation {
	return Operation{Kind: Insert, Location: location, Text: text}
}

// NewRemove returns a Remove operation.
func NewRemove(location, length int) Operation {
	return Operation{Kind: Remove, Location: location, Length: length}
}

// Range returns the backing range the operation replaces.
func (o Operation) Range() mdast.Range {
	if o.Kind == Remove {
		return mdast.NewRange(o.Location, o.Length)
	}
	return mdast.Range{Start: o.Location, End: o.Location}
}

// Replacement returns the text that replaces Range.
func (o Operation) Replacement() string {
	if o.Kind == Remove {
		return ""
	}
	return o.Text
}

func (o Operation) String() string {
	if o.Kind == Remove {
		return fmt.Sprintf("remove(%d, %d)", o.Location, o.Length)
	}
	return fmt.Sprintf("insert(%d, %s)", o.Location, strconv.Quote(o.Text))
}

// FromReplace returns the operations equivalent to replacing r with text:
// a Remove for a non-empty r followed by an Insert for non-empty text.
func FromReplace(r mdast.Range, text string) []Operation {
	var ops []Operation
	if !r.IsEmpty() {
		ops = append(ops, NewRemove(r.Start, r.Len()))
	}
	if text != "" {
		ops = append(ops, NewInsert(r.Start, text))
	}
	return ops
}

// Snapshot is a complete document state sent by the transport on connect.
type Snapshot struct {
	Text string `json:"text"`

	// Version is the sequence number of the last operation folded into Text.
	Version uint64 `json:"version,omitempty"`
}

// wireOperation is the JSON shape of an operation.
type wireOperation struct {
	Type     string  `json:"type"`
	Location int     `json:"location"`
	String   *string `json:"string,omitempty"`
	Length   *int    `json:"length,omitempty"`
	Seq      uint64  `json:"seq,omitempty"`
}

// MarshalJSON encodes the operation as {"type":"insert","location":n,"string":s}
// or {"type":"remove","location":n,"length":n}.
func (o Operation) MarshalJSON() ([]byte, error) {
	wire := wireOperation{Type: o.Kind.String(), Location: o.Location, Seq: o.Seq}
	if o.Kind == Remove {
		wire.Length = &o.Length
	} else {
		wire.String = &o.Text
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encode operation: %w", err)
	}
	return data, nil
}

// UnmarshalJSON decodes the wire shape written by MarshalJSON.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var wire wireOperation
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("decode operation: %w", err)
	}

	switch wire.Type {
	case insertName:
		if wire.String == nil {
			return &ValidationError{Message: "insert without string"}
		}
		*o = Operation{Kind: Insert, Location: wire.Location, Text: *wire.String, Seq: wire.Seq}
	case removeName:
		if wire.Length == nil {
			return &ValidationError{Message: "remove without length"}
		}
		*o = Operation{Kind: Remove, Location: wire.Location, Length: *wire.Length, Seq: wire.Seq}
	default:
		return &ValidationError{Message: fmt.Sprintf("unknown operation type %q", wire.Type)}
	}

	return nil
}
