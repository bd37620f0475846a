package ot_test

import (
	"errors"
	"testing"

	"github.com/yaklabco/gomdedit/pkg/mdast"
	"github.com/yaklabco/gomdedit/pkg/ot"
)

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		op      ot.Operation
		want    string
		wantErr bool
	}{
		{
			name:    "insert",
			content: "hello world",
			op:      ot.NewInsert(5, " beautiful"),
			want:    "hello beautiful world",
		},
		{
			name:    "insert at end",
			content: "abc",
			op:      ot.NewInsert(3, "d"),
			want:    "abcd",
		},
		{
			name:    "remove",
			content: "hello world",
			op:      ot.NewRemove(5, 6),
			want:    "hello",
		},
		{
			name:    "remove past end",
			content: "abc",
			op:      ot.NewRemove(2, 2),
			want:    "abc",
			wantErr: true,
		},
		{
			name:    "negative location",
			content: "abc",
			op:      ot.NewInsert(-1, "x"),
			want:    "abc",
			wantErr: true,
		},
		{
			name:    "negative length",
			content: "abc",
			op:      ot.NewRemove(1, -1),
			want:    "abc",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ot.Apply(tt.content, tt.op)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Apply() error = %v, wantErr %v", err, tt.wantErr)
			}
			var validationErr *ot.ValidationError
			if tt.wantErr && !errors.As(err, &validationErr) {
				t.Errorf("Apply() error type = %T, want *ot.ValidationError", err)
			}
			if got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyAll_Ordering(t *testing.T) {
	t.Parallel()

	insert := ot.NewInsert(1, "X")
	remove := ot.NewRemove(0, 2)

	inOrder, err := ot.ApplyAll("abc", []ot.Operation{insert, remove})
	if err != nil {
		t.Fatalf("ApplyAll() error = %v", err)
	}
	replaced, err := ot.ApplyAll("abc", ot.FromReplace(mdast.Range{Start: 0, End: 1}, ""))
	if err != nil {
		t.Fatalf("ApplyAll() error = %v", err)
	}
	if inOrder != replaced || inOrder != "bc" {
		t.Errorf("in order = %q, single replace = %q, want both %q", inOrder, replaced, "bc")
	}

	reversed, err := ot.ApplyAll("abc", []ot.Operation{remove, insert})
	if err != nil {
		t.Fatalf("ApplyAll() error = %v", err)
	}
	if reversed != "cX" {
		t.Errorf("reversed = %q, want %q", reversed, "cX")
	}
}

func TestApplyAll_StopsAtInvalid(t *testing.T) {
	t.Parallel()

	got, err := ot.ApplyAll("abc", []ot.Operation{ot.NewInsert(0, "x"), ot.NewRemove(9, 1)})
	if err == nil {
		t.Fatal("ApplyAll() expected error")
	}
	if got != "xabc" {
		t.Errorf("ApplyAll() = %q, want text before the failing operation", got)
	}
}

func TestFromReplace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		r    mdast.Range
		text string
		want []ot.Operation
	}{
		{"insert only", mdast.Range{Start: 2, End: 2}, "x", []ot.Operation{ot.NewInsert(2, "x")}},
		{"remove only", mdast.Range{Start: 1, End: 3}, "", []ot.Operation{ot.NewRemove(1, 2)}},
		{"remove then insert", mdast.Range{Start: 1, End: 3}, "yz", []ot.Operation{ot.NewRemove(1, 2), ot.NewInsert(1, "yz")}},
		{"nothing", mdast.Range{Start: 1, End: 1}, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ot.FromReplace(tt.r, tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("FromReplace() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("op %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDiff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
	}{
		{"identical", "same", "same"},
		{"append", "abc", "abcd"},
		{"prepend", "abc", "xabc"},
		{"middle", "a big dog", "a red dog"},
		{"clear", "abc", ""},
		{"from empty", "", "abc"},
		{"shared lead byte", "é", "è"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ops := ot.Diff(tt.a, tt.b)
			got, err := ot.ApplyAll(tt.a, ops)
			if err != nil {
				t.Fatalf("ApplyAll() error = %v", err)
			}
			if got != tt.b {
				t.Errorf("Diff(%q, %q) produced %q", tt.a, tt.b, got)
			}
			if tt.a == tt.b && len(ops) != 0 {
				t.Errorf("Diff of identical strings = %v, want none", ops)
			}
			if len(ops) > 0 {
				if _, err := ot.FromWire(tt.a, ot.ToWire(tt.a, ops[0], ot.UnitRune), ot.UnitRune); err != nil {
					t.Errorf("operation %v splits a character: %v", ops[0], err)
				}
			}
		})
	}
}
