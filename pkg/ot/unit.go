package ot

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// Unit is the offset unit agreed with the transport.
type Unit int

const (
	// UnitUTF16 counts UTF-16 code units.
	UnitUTF16 Unit = iota

	// UnitRune counts Unicode scalar values.
	UnitRune

	// UnitByte counts UTF-8 bytes.
	UnitByte
)

// Unit names as used in configuration.
const (
	unitUTF16Name = "utf16"
	unitRuneName  = "rune"
	unitByteName  = "byte"
)

// ParseUnit parses a unit name.
func ParseUnit(name string) (Unit, error) {
	switch name {
	case unitUTF16Name, "":
		return UnitUTF16, nil
	case unitRuneName:
		return UnitRune, nil
	case unitByteName:
		return UnitByte, nil
	default:
		return 0, fmt.Errorf("unknown offset unit %q (valid: %s, %s, %s)",
			name, unitUTF16Name, unitRuneName, unitByteName)
	}
}

func (u Unit) String() string {
	switch u {
	case UnitRune:
		return unitRuneName
	case UnitByte:
		return unitByteName
	default:
		return unitUTF16Name
	}
}

// width returns how many units r occupies.
func (u Unit) width(r rune, size int) int {
	switch u {
	case UnitByte:
		return size
	case UnitRune:
		return 1
	default:
		if n := utf16.RuneLen(r); n > 0 {
			return n
		}
		return 1
	}
}

// Len returns the length of s in units.
func (u Unit) Len(s string) int {
	if u == UnitByte {
		return len(s)
	}
	n := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		n += u.width(r, size)
		i += size
	}
	return n
}

// ToWire converts a byte offset in text to units.
func (u Unit) ToWire(text string, offset int) int {
	return u.Len(text[:offset])
}

// FromWire converts a unit offset in text to a byte offset. It fails when the
// offset is out of bounds or falls inside a character.
func (u Unit) FromWire(text string, units int) (int, error) {
	if units < 0 {
		return 0, fmt.Errorf("offset %d is negative", units)
	}
	if u == UnitByte {
		if units > len(text) {
			return 0, fmt.Errorf("offset %d exceeds length %d", units, len(text))
		}
		if units < len(text) && !utf8.RuneStart(text[units]) {
			return 0, fmt.Errorf("offset %d splits a character", units)
		}
		return units, nil
	}

	n := 0
	for i := 0; i < len(text); {
		if n == units {
			return i, nil
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		n += u.width(r, size)
		if n > units {
			return 0, fmt.Errorf("offset %d splits a character", units)
		}
		i += size
	}
	if n == units {
		return len(text), nil
	}
	return 0, fmt.Errorf("offset %d exceeds length %d", units, n)
}

// ToWire converts op from byte offsets into u, relative to text as it stood
// before op was applied.
func ToWire(text string, op Operation, u Unit) Operation {
	if u == UnitByte {
		return op
	}
	out := op
	out.Location = u.ToWire(text, op.Location)
	if op.Kind == Remove {
		out.Length = u.Len(text[op.Location : op.Location+op.Length])
	}
	return out
}

// FromWire converts op from u into byte offsets, relative to text as it stands
// before op is applied.
func FromWire(text string, op Operation, u Unit) (Operation, error) {
	out := op
	start, err := u.FromWire(text, op.Location)
	if err != nil {
		return op, &ValidationError{Op: op, Message: err.Error()}
	}
	out.Location = start

	if op.Kind == Remove {
		if op.Length < 0 {
			return op, &ValidationError{Op: op, Message: "length is negative"}
		}
		end, err := u.FromWire(text, op.Location+op.Length)
		if err != nil {
			return op, &ValidationError{Op: op, Message: err.Error()}
		}
		out.Length = end - start
	}
	return out, nil
}
